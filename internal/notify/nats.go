package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/model"
)

// NATSPublisher publishes alert lifecycle events to NATS subjects of the
// form alert.created.<service> and alert.resolved.<service>, so external
// notifiers can subscribe per event type or per service.
type NATSPublisher struct {
	logger *zap.Logger
	nc     *nats.Conn
}

// NewNATSPublisher connects to the given NATS URL.
func NewNATSPublisher(url, name string, logger *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{
		logger: logger.Named("notify"),
		nc:     nc,
	}, nil
}

// Publish sends one alert lifecycle event.
func (p *NATSPublisher) Publish(event model.AlertEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	subject := fmt.Sprintf("alert.%s.%s", event.Type, event.Alert.Service)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	p.logger.Debug("Published alert event",
		zap.String("subject", subject),
		zap.String("alert_id", event.Alert.ID))
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("Failed to drain NATS connection", zap.Error(err))
	}
}
