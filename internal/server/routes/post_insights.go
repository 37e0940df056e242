package routes

import (
	"net/http"

	"github.com/mkm-lab/analysis-engine/internal/server/middleware"
	"github.com/mkm-lab/analysis-engine/pkg/graph"

	"github.com/labstack/echo/v4"
)

// GenerateInsightsHandler derives recommendations from the knowledge
// graph for the metric readings in the request.
func GenerateInsightsHandler(c echo.Context) error {
	type generateInsightsBody struct {
		Metrics map[string]float64 `json:"metrics" validate:"required"`
	}

	type generateInsightsResponse struct {
		Message  string          `json:"message"`
		Insights []graph.Insight `json:"insights"`
	}

	data := new(generateInsightsBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, generateInsightsResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, generateInsightsResponse{
			Message: "Invalid request body",
		})
	}

	eng := c.(*middleware.AppContext).App.Engine
	insights := eng.Insights(data.Metrics)
	if insights == nil {
		insights = []graph.Insight{}
	}

	return c.JSON(http.StatusOK, generateInsightsResponse{
		Message:  "OK",
		Insights: insights,
	})
}
