package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/PratikDhanave/telemetry-ingest-service/internal/auth"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/config"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/handlers"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/metrics"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/store"
)

// NewRouter wires public endpoints and the ingestion API.
// Public: /health, /ready, /metrics
// Telemetry-key protected: POST /api/telemetry/events
func NewRouter(cfg config.Config, st store.EventStore, logger *slog.Logger, reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the store is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterMetricRoutes(r, reg)

	eventHandler := handlers.NewEventHandler(
		st,
		auth.NewTelemetryKey(cfg.TelemetryKeys),
		logger,
		metrics.NewIngestMetrics(reg),
		cfg.MaxBodyBytes,
	)
	handlers.RegisterEventRoutes(r.Group("/api/telemetry"), eventHandler)

	return r
}
