package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// ServiceEntry is one configured service to poll.
type ServiceEntry struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
}

// RuleThresholds holds the fixed thresholds the rule engine evaluates
// against. T1 is response time in milliseconds, T2 an error-rate fraction,
// T3 an active-connection count.
type RuleThresholds struct {
	ResponseTimeMs float64 `mapstructure:"response_time_ms"`
	ErrorRate      float64 `mapstructure:"error_rate"`
	Connections    int     `mapstructure:"connections"`
}

// AlertConfig configures the alert lifecycle manager.
type AlertConfig struct {
	Capacity        int     `mapstructure:"capacity"`
	ErrorRate       float64 `mapstructure:"error_rate"`
	ResponseTimeMs  float64 `mapstructure:"response_time_ms"`
	ResourcePercent float64 `mapstructure:"resource_percent"`
}

// NATSConfig configures the optional alert event publisher.
type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// ArchiveConfig configures the optional SQLite alert audit archive.
type ArchiveConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

// Config is the full engine configuration.
type Config struct {
	APIAddr            string         `mapstructure:"api_addr"`
	PollInterval       time.Duration  `mapstructure:"poll_interval"`
	PollTimeout        time.Duration  `mapstructure:"poll_timeout"`
	EvaluationInterval time.Duration  `mapstructure:"evaluation_interval"`
	HostProbeInterval  time.Duration  `mapstructure:"host_probe_interval"`
	BufferCapacity     int            `mapstructure:"buffer_capacity"`
	Rules              RuleThresholds `mapstructure:"rules"`
	Alerts             AlertConfig    `mapstructure:"alerts"`
	NATS               NATSConfig     `mapstructure:"nats"`
	Archive            ArchiveConfig  `mapstructure:"archive"`
	Services           []ServiceEntry `mapstructure:"services"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_addr", ":8080")
	v.SetDefault("poll_interval", 5*time.Second)
	v.SetDefault("poll_timeout", 3*time.Second)
	v.SetDefault("evaluation_interval", 30*time.Second)
	v.SetDefault("host_probe_interval", 15*time.Second)
	v.SetDefault("buffer_capacity", 20)
	v.SetDefault("rules.response_time_ms", 60.0)
	v.SetDefault("rules.error_rate", 0.03)
	v.SetDefault("rules.connections", 150)
	v.SetDefault("alerts.capacity", 5)
	v.SetDefault("alerts.error_rate", 0.05)
	v.SetDefault("alerts.response_time_ms", 100.0)
	v.SetDefault("alerts.resource_percent", 90.0)
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.path", "alerts.db")
	v.SetDefault("archive.max_age", 7*24*time.Hour)
}

// Load reads the YAML config file at path and unmarshals it over the
// defaults. A missing file is not an error; defaults still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate reports configuration problems that do not prevent the engine
// from running. An empty service list is surfaced once at startup; the
// engine still runs and produces an all-zero overview.
func (c *Config) Validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("no services configured")
	}
	for i, s := range c.Services {
		if s.Name == "" {
			return fmt.Errorf("service %d has no name", i)
		}
		if s.URL == "" {
			return fmt.Errorf("service %q has no url", s.Name)
		}
	}
	return nil
}
