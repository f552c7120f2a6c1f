// Package server exposes extraction jobs over HTTP and health over gRPC.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires middleware and routes. metrics may be nil.
func NewRouter(h *Handler, metrics http.Handler, observe HTTPObserver, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(logger))
	router.Use(RequestID())
	router.Use(RequestLogger(logger, observe))

	router.GET("/healthz", h.Health)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/extractions", h.CreateExtraction)
		v1.GET("/extractions", h.ListExtractions)
		v1.GET("/extractions/:id", h.GetExtraction)
		v1.GET("/extractions/:id/export", h.ExportExtraction)
	}
	return router
}
