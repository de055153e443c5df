package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shop_sales/internal/metrics"
	"shop_sales/internal/sales"
)

// Options carries the dependencies InitRoutes wires into the engine.
type Options struct {
	SalesService   *sales.Service
	Metrics        *metrics.Registry
	Logger         *zap.Logger
	AllowedOrigins []string
}

// InitRoutes registers the middleware chain and every sales endpoint on the
// given Gin engine.
func InitRoutes(e *gin.Engine, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	e.Use(requestID(), gin.Recovery(), corsPolicy(opts.AllowedOrigins), recordMetrics(reg), requestLogger(logger))
	e.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	salesHandler := NewSalesHandler(opts.SalesService, reg, logger)

	e.GET("/sales", salesHandler.handleListSales)
	e.GET("/sales/total", salesHandler.handleTotalSales)
	e.GET("/sales/:id", salesHandler.handleGetSale)
	e.POST("/sales", salesHandler.handleCreateSale)
	e.PUT("/sales/:id", salesHandler.handleUpdateSale)
	e.DELETE("/sales/:id", salesHandler.handleDeleteSale)

	e.GET("/health", salesHandler.handleHealth)
	e.GET("/metrics", gin.WrapH(reg.Handler()))
	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
