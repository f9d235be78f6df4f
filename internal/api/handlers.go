// Package api exposes the engine's read boundary to the presentation layer
// as a JSON API. Every endpoint is a non-blocking snapshot read except alert
// resolution, the single write the presentation layer is allowed.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finpulse/finpulse/internal/engine"
	"github.com/finpulse/finpulse/internal/model"
	"github.com/finpulse/finpulse/internal/monitor"
)

// Handler serves the engine state.
type Handler struct {
	engine *engine.Engine
	alerts *monitor.AlertManager
}

// NewHandler creates a handler over the engine and alert manager.
func NewHandler(eng *engine.Engine, alerts *monitor.AlertManager) *Handler {
	return &Handler{engine: eng, alerts: alerts}
}

// ListServices handles GET /api/services
func (h *Handler) ListServices(c *gin.Context) {
	records := h.engine.ServiceRecords()
	c.JSON(http.StatusOK, gin.H{
		"services": records,
		"count":    len(records),
	})
}

// GetOverview handles GET /api/overview
func (h *Handler) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Overview())
}

// GetSeries handles GET /api/series/:name
func (h *Handler) GetSeries(c *gin.Context) {
	name := c.Param("name")
	samples := h.engine.SeriesSnapshot(name)
	if samples == nil {
		samples = []model.MetricSample{}
	}
	c.JSON(http.StatusOK, gin.H{
		"series":  name,
		"samples": samples,
	})
}

// ListSeries handles GET /api/series
func (h *Handler) ListSeries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"series": h.engine.SeriesNames()})
}

// ListInsights handles GET /api/insights
func (h *Handler) ListInsights(c *gin.Context) {
	insights := h.engine.Insights()
	c.JSON(http.StatusOK, gin.H{
		"insights": insights,
		"count":    len(insights),
	})
}

// ListAlerts handles GET /api/alerts
func (h *Handler) ListAlerts(c *gin.Context) {
	alerts := h.alerts.Alerts()
	c.JSON(http.StatusOK, gin.H{
		"alerts":  alerts,
		"active":  h.alerts.ActiveCount(),
		"dropped": h.alerts.Dropped(),
	})
}

// ResolveAlert handles POST /api/alerts/:id/resolve. Resolving an unknown
// id is a no-op, reported in the response rather than as an error status.
func (h *Handler) ResolveAlert(c *gin.Context) {
	id := c.Param("id")
	resolved := h.alerts.Resolve(id)
	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"resolved": resolved,
	})
}

// Health handles GET /health, the dashboard's own liveness endpoint.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "finpulse",
	})
}
