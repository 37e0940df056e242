package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkm-lab/analysis-engine/pkg/advisor"
	"github.com/mkm-lab/analysis-engine/pkg/ai"
	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/graph"
	"github.com/mkm-lab/analysis-engine/pkg/ingest"
	"github.com/mkm-lab/analysis-engine/pkg/logger"
	"github.com/mkm-lab/analysis-engine/pkg/retrieval"
	"github.com/mkm-lab/analysis-engine/pkg/scoring"
	"github.com/mkm-lab/analysis-engine/pkg/store"
)

// Engine ties the ingest pipeline, knowledge graph and retrieval
// surfaces together over one storage backend. The corpus is cached in
// memory and refreshed after every ingest; readers always see a
// complete, consistent corpus slice.
//
// An Engine should be created using New.
type Engine struct {
	mu     sync.RWMutex
	corpus []common.Document

	graph     *graph.KnowledgeGraph
	extractor *graph.KeywordExtractor
	store     store.Storage
	pipeline  *ingest.Pipeline
	advisor   *advisor.Advisor
}

// NewParams configures an Engine. Embedder and Store are required; the
// rest defaults to the built-in taxonomy and scoring tables.
type NewParams struct {
	Embedder ai.EmbeddingClient
	Store    store.Storage

	ScoringConfig scoring.Config
	Dimensions    int
	Parallel      int
	TopK          int
}

// New assembles an engine. Call Reload before serving queries to warm
// the corpus and graph from storage.
func New(params NewParams) *Engine {
	kg := graph.NewKnowledgeGraph()
	extractor := graph.NewKeywordExtractor(nil, nil)

	pipeline := ingest.NewPipeline(ingest.NewPipelineParams{
		Scorer:     scoring.NewScorer(params.ScoringConfig),
		Embedder:   params.Embedder,
		Extractor:  extractor,
		Graph:      kg,
		Store:      params.Store,
		Parallel:   params.Parallel,
		Dimensions: params.Dimensions,
	})

	retriever := retrieval.NewEngine(params.Embedder, params.Dimensions)

	return &Engine{
		graph:     kg,
		extractor: extractor,
		store:     params.Store,
		pipeline:  pipeline,
		advisor:   advisor.NewAdvisor(retriever, params.TopK),
	}
}

// Reload replaces the in-memory corpus and graph with persisted state.
func (e *Engine) Reload(ctx context.Context) error {
	docs, err := e.store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	nodes, edges, err := e.store.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	e.graph.Load(nodes, edges)

	e.mu.Lock()
	e.corpus = docs
	e.mu.Unlock()

	logger.Info("Engine state loaded", "documents", len(docs), "nodes", len(nodes), "edges", len(edges))
	return nil
}

// Ingest runs a batch through the pipeline and refreshes the cached
// corpus from storage.
func (e *Engine) Ingest(ctx context.Context, batch []common.RawDocument) (*ingest.BatchResult, error) {
	result, err := e.pipeline.Run(ctx, batch)
	if err != nil {
		return nil, err
	}

	docs, err := e.store.ListDocuments(ctx)
	if err != nil {
		return result, fmt.Errorf("batch persisted but corpus refresh failed: %w", err)
	}
	e.mu.Lock()
	e.corpus = docs
	e.mu.Unlock()

	return result, nil
}

// Ask answers a question against the current corpus.
func (e *Engine) Ask(ctx context.Context, question string) (*advisor.Answer, error) {
	e.mu.RLock()
	corpus := e.corpus
	e.mu.RUnlock()
	return e.advisor.Ask(ctx, question, corpus)
}

// RelatedConcepts traverses the graph outward from an entity. Returns
// ErrNotFound when the entity was never extracted from any document.
func (e *Engine) RelatedConcepts(entity string, maxDepth int) ([]common.RelatedConcept, error) {
	snap := e.graph.Snapshot()
	if _, ok := snap.Node(entity); !ok {
		return nil, fmt.Errorf("entity %q: %w", entity, common.ErrNotFound)
	}
	return snap.FindRelated(entity, maxDepth), nil
}

// Insights derives recommendations for the biometric fields present in
// the metrics payload.
func (e *Engine) Insights(metrics map[string]float64) []graph.Insight {
	var recognized []string
	for _, field := range graph.BiometricFields(e.extractor.Terms()) {
		if _, ok := metrics[field]; ok {
			recognized = append(recognized, field)
		}
	}
	return e.graph.Snapshot().Insights(metrics, recognized)
}

// Stats reports persisted corpus and graph totals.
func (e *Engine) Stats(ctx context.Context) (store.Stats, error) {
	return e.store.Stats(ctx)
}
