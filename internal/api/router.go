package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with CORS enabled for browser-based
// dashboards and all engine routes registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
	}))

	r.GET("/health", h.Health)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/services", h.ListServices)
		apiGroup.GET("/overview", h.GetOverview)
		apiGroup.GET("/series", h.ListSeries)
		apiGroup.GET("/series/:name", h.GetSeries)
		apiGroup.GET("/insights", h.ListInsights)
		apiGroup.GET("/alerts", h.ListAlerts)
		apiGroup.POST("/alerts/:id/resolve", h.ResolveAlert)
	}

	return r
}
