package routes

import (
	"net/http"

	"github.com/mkm-lab/analysis-engine/internal/server/middleware"
	"github.com/mkm-lab/analysis-engine/pkg/advisor"
	"github.com/mkm-lab/analysis-engine/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AskAdvisorHandler answers a free-text question with cited sources
// from the corpus.
func AskAdvisorHandler(c echo.Context) error {
	type askAdvisorBody struct {
		Question string `json:"question" validate:"required"`
	}

	type askAdvisorResponse struct {
		Message string          `json:"message"`
		Answer  *advisor.Answer `json:"answer,omitempty"`
	}

	data := new(askAdvisorBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, askAdvisorResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, askAdvisorResponse{
			Message: "Invalid request body",
		})
	}

	eng := c.(*middleware.AppContext).App.Engine
	answer, err := eng.Ask(c.Request().Context(), data.Question)
	if err != nil {
		logger.Error("Failed to answer question", "err", err)
		return c.JSON(http.StatusInternalServerError, askAdvisorResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, askAdvisorResponse{
		Message: "OK",
		Answer:  answer,
	})
}
