package server

import (
	"github.com/mkm-lab/analysis-engine/internal/server/middleware"
	"github.com/mkm-lab/analysis-engine/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Query routes
	apiRoutes.POST("/advisor", routes.AskAdvisorHandler)
	apiRoutes.POST("/insights", routes.GenerateInsightsHandler)
	apiRoutes.GET("/related/:entity", routes.GetRelatedHandler)
	apiRoutes.GET("/knowledge-stats", routes.GetKnowledgeStatsHandler)

	// Ingestion routes
	apiRoutes.POST("/documents", routes.SubmitDocumentsHandler, middleware.AuthMiddleware)
}
