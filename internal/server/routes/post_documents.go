package routes

import (
	"encoding/json"
	"net/http"

	"github.com/mkm-lab/analysis-engine/internal/queue"
	"github.com/mkm-lab/analysis-engine/internal/server/middleware"
	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SubmitDocumentsHandler accepts a batch of collected documents and
// enqueues it for ingestion. Processing is asynchronous; the response
// carries the batch id for correlation.
func SubmitDocumentsHandler(c echo.Context) error {
	type submitDocumentsBody struct {
		Documents []common.RawDocument `json:"documents" validate:"required,min=1"`
	}

	type submitDocumentsResponse struct {
		Message string `json:"message"`
		BatchID string `json:"batch_id,omitempty"`
		Queued  int    `json:"queued,omitempty"`
	}

	data := new(submitDocumentsBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, submitDocumentsResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, submitDocumentsResponse{
			Message: "Invalid request body",
		})
	}

	batchID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, submitDocumentsResponse{
			Message: "Internal server error",
		})
	}

	msg := queue.IngestBatchMsg{
		Message:   "Document batch submitted",
		BatchID:   batchID,
		Documents: data.Documents,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, submitDocumentsResponse{
			Message: "Internal server error",
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.IngestQueue, msgBytes); err != nil {
		logger.Error("Failed to publish to ingest_queue", "err", err)
		return c.JSON(http.StatusInternalServerError, submitDocumentsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, submitDocumentsResponse{
		Message: "Batch queued for ingestion",
		BatchID: batchID,
		Queued:  len(data.Documents),
	})
}
