package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterMetricRoutes registers the Prometheus scrape endpoint.
//
// GET /metrics
// - Public, like /health and /ready
// - Serves every collector registered on g
func RegisterMetricRoutes(r gin.IRoutes, g prometheus.Gatherer) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}
