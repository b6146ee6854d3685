package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-sqa-metrics/docs"
	"go-sqa-metrics/internal/api/handler"
	"go-sqa-metrics/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.Handle("/swagger/", httpSwagger.WrapHandler)

	r.POST("/api/v1/results", h.CreateResult)
	r.GET("/api/v1/results", h.ListResults)
	// More specific routes first
	r.GET("/api/v1/results/:id/schema", h.GetResultSchema)
	r.POST("/api/v1/results/:id/aggregate", h.AggregateResult)
	r.GET("/api/v1/results/:id", h.GetResult)
	r.DELETE("/api/v1/results/:id", h.DeleteResult)

	r.POST("/api/v1/comparisons", h.CreateComparison)
	r.GET("/api/v1/comparisons", h.ListComparisons)
	r.GET("/api/v1/comparisons/:id/errors", h.GetComparisonErrors)
	r.GET("/api/v1/comparisons/:id/progress", h.GetComparisonProgress)
	r.GET("/api/v1/comparisons/:id/logs", h.GetComparisonLogs)
	r.GET("/api/v1/comparisons/:id/outputs", h.GetComparisonOutputs)
	r.GET("/api/v1/comparisons/:id/chart", h.GetComparisonChart)
	r.GET("/api/v1/comparisons/:id", h.GetComparison)

	r.GET("/api/v1/settings/custom-metrics", h.GetCustomMetrics)
	r.PUT("/api/v1/settings/custom-metrics", h.PutCustomMetrics)
	r.POST("/api/v1/settings/custom-metrics/:name", h.AddCustomMetric)
	r.DELETE("/api/v1/settings/custom-metrics/:name", h.RemoveCustomMetric)

	r.GET("/api/v1/download/:jobID/:filename", h.DownloadFile)
}
