package ingest

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/mkm-lab/analysis-engine/internal/util"
	"github.com/mkm-lab/analysis-engine/pkg/ai"
	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/graph"
	"github.com/mkm-lab/analysis-engine/pkg/logger"
	"github.com/mkm-lab/analysis-engine/pkg/scoring"
	"github.com/mkm-lab/analysis-engine/pkg/store"

	"github.com/go-playground/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxRetries     = 3
	defaultRequestTimeout = 30 * time.Second
	defaultTokenEncoder   = "cl100k_base"
	defaultMaxTokens      = 8000
	retryBaseDelay        = 500 * time.Millisecond
)

// Pipeline drives a raw batch through validation, scoring,
// deduplication, embedding and graph construction, then persists the
// admitted documents and the updated graph.
//
// A Pipeline should be created using NewPipeline.
type Pipeline struct {
	scorer    *scoring.Scorer
	embedder  ai.EmbeddingClient
	extractor graph.ExtractorStrategy
	graph     *graph.KnowledgeGraph
	store     store.Storage
	validate  *validator.Validate

	parallel       int
	maxRetries     int
	requestTimeout time.Duration
	tokenEncoder   string
	maxTokens      int
	dimensions     int
}

// NewPipelineParams contains the collaborators and tuning knobs for a
// Pipeline. Zero values fall back to sensible defaults; Scorer,
// Embedder, Graph and Store are required.
type NewPipelineParams struct {
	Scorer    *scoring.Scorer
	Embedder  ai.EmbeddingClient
	Extractor graph.ExtractorStrategy
	Graph     *graph.KnowledgeGraph
	Store     store.Storage

	Parallel       int
	MaxRetries     int
	RequestTimeout time.Duration
	TokenEncoder   string
	MaxTokens      int
	Dimensions     int
}

// NewPipeline assembles an ingest pipeline.
func NewPipeline(params NewPipelineParams) *Pipeline {
	p := &Pipeline{
		scorer:    params.Scorer,
		embedder:  params.Embedder,
		extractor: params.Extractor,
		graph:     params.Graph,
		store:     params.Store,
		validate:  validator.New(),

		parallel:       params.Parallel,
		maxRetries:     params.MaxRetries,
		requestTimeout: params.RequestTimeout,
		tokenEncoder:   params.TokenEncoder,
		maxTokens:      params.MaxTokens,
		dimensions:     params.Dimensions,
	}
	if p.extractor == nil {
		p.extractor = graph.NewKeywordExtractor(nil, nil)
	}
	if p.parallel <= 0 {
		p.parallel = runtime.NumCPU()
	}
	if p.maxRetries <= 0 {
		p.maxRetries = defaultMaxRetries
	}
	if p.requestTimeout <= 0 {
		p.requestTimeout = defaultRequestTimeout
	}
	if p.tokenEncoder == "" {
		p.tokenEncoder = defaultTokenEncoder
	}
	if p.maxTokens == 0 {
		p.maxTokens = defaultMaxTokens
	}
	if p.dimensions <= 0 {
		p.dimensions = 384
	}
	return p
}

// BatchError records one document that failed a pipeline stage without
// aborting the batch.
type BatchError struct {
	Title string `json:"title"`
	Err   string `json:"error"`
}

// BatchResult summarizes one pipeline run.
type BatchResult struct {
	Total      int                        `json:"total"`
	Admitted   int                        `json:"admitted"`
	Duplicates int                        `json:"duplicates"`
	Malformed  int                        `json:"malformed"`
	TierCounts map[common.QualityTier]int `json:"tier_counts"`
	MeanScore  float64                    `json:"mean_score"`
	Errors     []BatchError               `json:"errors,omitempty"`
}

// Run processes one batch. Per-document failures (malformed input,
// embedding errors) are recorded and skipped; only storage failures and
// context cancellation abort the run. Documents are processed
// concurrently but the returned result reflects batch order.
func (p *Pipeline) Run(ctx context.Context, batch []common.RawDocument) (*BatchResult, error) {
	result := &BatchResult{
		Total:      len(batch),
		TierCounts: make(map[common.QualityTier]int),
	}
	if len(batch) == 0 {
		return result, nil
	}

	keys, err := util.RetryBackoffWithContext(ctx, p.maxRetries, retryBaseDelay,
		func(ctx context.Context) (store.Keys, error) {
			return p.store.ExistingKeys(ctx)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load existing document keys: %w", err)
	}

	unique, duplicates := NewDeduplicator(keys).Filter(batch)
	result.Duplicates = len(duplicates)
	for _, doc := range duplicates {
		logger.Debug("Skipping document", "title", doc.Title, "reason", common.ErrDuplicateDocument)
	}
	logger.Debug("Deduplicated batch", "total", len(batch), "unique", len(unique))

	admitted := make([]*common.Document, len(unique))
	var (
		errMu     sync.Mutex
		docErrors []BatchError
	)
	recordError := func(title string, err error) {
		errMu.Lock()
		defer errMu.Unlock()
		docErrors = append(docErrors, BatchError{Title: title, Err: err.Error()})
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(p.parallel)
	for i := range unique {
		idx := i
		raw := unique[i]
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}

			if err := p.validate.Struct(raw); err != nil {
				recordError(raw.Title, fmt.Errorf("%w: %w", common.ErrMalformedDocument, err))
				return nil
			}

			doc, err := p.processDocument(ectx, raw, recordError)
			if err != nil {
				return err
			}
			admitted[idx] = doc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	docs := make([]common.Document, 0, len(admitted))
	var scoreSum float64
	for _, doc := range admitted {
		if doc == nil {
			result.Malformed++
			continue
		}
		docs = append(docs, *doc)
		result.TierCounts[doc.QualityTier()]++
		scoreSum += doc.QualityScore
	}
	result.Admitted = len(docs)
	result.Errors = docErrors
	if result.Admitted > 0 {
		result.MeanScore = scoreSum / float64(result.Admitted)
	}

	if err := util.RetryErrBackoffWithContext(ctx, p.maxRetries, retryBaseDelay,
		func(ctx context.Context) error {
			return p.store.InsertDocuments(ctx, docs)
		}); err != nil {
		return nil, fmt.Errorf("failed to persist documents: %w", err)
	}

	nodes, edges := p.graph.Export()
	if err := util.RetryErrBackoffWithContext(ctx, p.maxRetries, retryBaseDelay,
		func(ctx context.Context) error {
			return p.store.SaveGraph(ctx, nodes, edges)
		}); err != nil {
		return nil, fmt.Errorf("failed to persist graph: %w", err)
	}

	logger.Info("Batch processed",
		"total", result.Total,
		"admitted", result.Admitted,
		"duplicates", result.Duplicates,
		"malformed", result.Malformed,
		"errors", len(result.Errors),
	)
	return result, nil
}

// processDocument scores and admits one raw document. Low quality
// documents stay out of the graph and are never embedded; embedding
// failures leave the document in the corpus without a vector.
func (p *Pipeline) processDocument(ctx context.Context, raw common.RawDocument, onError func(string, error)) (*common.Document, error) {
	scored := p.scorer.Score(raw)

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document id: %w", err)
	}

	doc := &common.Document{
		ID:            id,
		Title:         raw.Title,
		Summary:       raw.Summary,
		Content:       raw.Content,
		URL:           raw.URL,
		SourceType:    raw.SourceType,
		SourceName:    raw.SourceName,
		PublishedDate: raw.PublishedDate,
		Keywords:      raw.Keywords,
		CitationCount: raw.CitationCount,
		QualityScore:  scored.Score,
		EvidenceTier:  scored.Evidence,
		ProcessedAt:   time.Now().UTC(),
	}

	if scored.Tier == common.QualityLow {
		return doc, nil
	}

	if vec, err := p.embedDocument(ctx, doc); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Embedding failed, document kept without vector", "title", doc.Title, "err", err)
		onError(doc.Title, err)
	} else {
		doc.Embedding = vec
	}

	entities, relations := p.extractor.Extract(*doc)
	p.graph.AddDocument(*doc, entities, relations)
	return doc, nil
}

func (p *Pipeline) embedDocument(ctx context.Context, doc *common.Document) ([]float32, error) {
	text := doc.Title + " " + doc.Content
	if truncated, err := ai.TruncateTokens(text, p.tokenEncoder, p.maxTokens); err != nil {
		// tiktoken fetches encoding files over the network on first use
		logger.Warn("Token truncation unavailable, embedding full text", "title", doc.Title, "err", err)
	} else {
		text = truncated
	}

	vec, err := util.RetryBackoffWithContext(ctx, p.maxRetries, retryBaseDelay,
		func(ctx context.Context) ([]float32, error) {
			rCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
			defer cancel()
			return p.embedder.GenerateEmbedding(rCtx, []byte(text))
		})
	if err != nil {
		return nil, err
	}
	if len(vec) != p.dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, want %d: %w", len(vec), p.dimensions, common.ErrDimensionMismatch)
	}
	return vec, nil
}
