package routes

import (
	"net/http"

	"github.com/mkm-lab/analysis-engine/internal/server/middleware"
	"github.com/mkm-lab/analysis-engine/pkg/logger"
	"github.com/mkm-lab/analysis-engine/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetKnowledgeStatsHandler reports corpus and graph totals.
func GetKnowledgeStatsHandler(c echo.Context) error {
	type getStatsResponse struct {
		Message string       `json:"message"`
		Stats   *store.Stats `json:"stats,omitempty"`
	}

	eng := c.(*middleware.AppContext).App.Engine
	stats, err := eng.Stats(c.Request().Context())
	if err != nil {
		logger.Error("Failed to load knowledge stats", "err", err)
		return c.JSON(http.StatusInternalServerError, getStatsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getStatsResponse{
		Message: "OK",
		Stats:   &stats,
	})
}
