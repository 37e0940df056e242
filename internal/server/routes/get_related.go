package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mkm-lab/analysis-engine/internal/server/middleware"
	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetRelatedHandler returns the strongest graph neighbors of an entity.
// The optional depth query parameter bounds the traversal.
func GetRelatedHandler(c echo.Context) error {
	type getRelatedResponse struct {
		Message string                  `json:"message"`
		Entity  string                  `json:"entity,omitempty"`
		Related []common.RelatedConcept `json:"related"`
	}

	entity := c.Param("entity")
	if entity == "" {
		return c.JSON(http.StatusBadRequest, getRelatedResponse{
			Message: "Missing entity",
		})
	}

	depth := 0
	if raw := c.QueryParam("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, getRelatedResponse{
				Message: "Invalid depth",
			})
		}
		depth = parsed
	}

	eng := c.(*middleware.AppContext).App.Engine
	related, err := eng.RelatedConcepts(entity, depth)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return c.JSON(http.StatusNotFound, getRelatedResponse{
				Message: "Unknown entity",
			})
		}
		logger.Error("Failed to query related concepts", "entity", entity, "err", err)
		return c.JSON(http.StatusInternalServerError, getRelatedResponse{
			Message: "Internal server error",
		})
	}
	if related == nil {
		related = []common.RelatedConcept{}
	}

	return c.JSON(http.StatusOK, getRelatedResponse{
		Message: "OK",
		Entity:  entity,
		Related: related,
	})
}
