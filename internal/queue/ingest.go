package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkm-lab/analysis-engine/internal/storage"
	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/engine"
	"github.com/mkm-lab/analysis-engine/pkg/leaselock"
	"github.com/mkm-lab/analysis-engine/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const ingestLeaseName = "ingest"

// IngestBatchMsg is the payload published to the ingest queue.
type IngestBatchMsg struct {
	Message   string               `json:"message"`
	BatchID   string               `json:"batch_id"`
	Documents []common.RawDocument `json:"documents"`
}

// ProcessIngestMessage archives the raw payload, takes the ingest
// lease and runs the batch through the engine. Lease contention waits
// rather than fails so queued batches apply in order.
func ProcessIngestMessage(
	ctx context.Context,
	eng *engine.Engine,
	s3Client *s3.Client,
	locks *leaselock.Client,
	body []byte,
) error {
	var msg IngestBatchMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %w", common.ErrMalformedDocument, err)
	}
	if msg.BatchID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return err
		}
		msg.BatchID = id
	}

	logger.Info("Processing ingest batch", "batch_id", msg.BatchID, "documents", len(msg.Documents))

	if s3Client != nil {
		if key, err := storage.ArchiveBatch(ctx, s3Client, msg.BatchID, body); err != nil {
			logger.Warn("Failed to archive batch", "batch_id", msg.BatchID, "err", err)
		} else {
			logger.Debug("Archived batch", "key", key)
		}
	}

	run := func(ctx context.Context) error {
		result, err := eng.Ingest(ctx, msg.Documents)
		if err != nil {
			return err
		}
		logger.Info("Ingest batch done",
			"batch_id", msg.BatchID,
			"admitted", result.Admitted,
			"duplicates", result.Duplicates,
			"malformed", result.Malformed,
			"mean_score", fmt.Sprintf("%.3f", result.MeanScore),
		)
		return nil
	}

	if locks == nil {
		return run(ctx)
	}
	return locks.WithLease(ctx, ingestLeaseName, leaselock.Options{
		TTL:  5 * time.Minute,
		Wait: true,
	}, run)
}
