package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/mkm-lab/analysis-engine/pkg/ai/fallback"
	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/store/memory"
)

func newTestEngine() (*Engine, *memory.Storage) {
	st := memory.NewStorage()
	e := New(NewParams{
		Embedder: fallback.NewClient(fallback.NewClientParams{}),
		Store:    st,
	})
	return e, st
}

func stressDoc(title, url string) common.RawDocument {
	return common.RawDocument{
		Title:         title,
		Content:       "A randomized controlled trial found that acute stress increases heart rate.",
		URL:           url,
		SourceName:    "pubmed",
		PublishedDate: "2025-03-01",
		CitationCount: 60,
	}
}

func TestIngestThenQuery(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	res, err := e.Ingest(ctx, []common.RawDocument{
		stressDoc("Stress and Heart Rate 1", "https://a.example"),
		stressDoc("Stress and Heart Rate 2", "https://b.example"),
		stressDoc("Stress and Heart Rate 3", "https://c.example"),
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if res.Admitted != 3 {
		t.Fatalf("admitted = %d, want 3", res.Admitted)
	}

	related, err := e.RelatedConcepts("stress_level", 1)
	if err != nil {
		t.Fatalf("RelatedConcepts() error = %v", err)
	}
	if len(related) != 1 {
		t.Fatalf("related = %v, want exactly one concept", related)
	}
	want := common.RelatedConcept{Entity: "heart_rate", Relation: common.RelationIncreases, Weight: 3, Depth: 1}
	if related[0] != want {
		t.Errorf("related[0] = %+v, want %+v", related[0], want)
	}

	answer, err := e.Ask(ctx, "Does stress increase heart rate?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(answer.Sources) != 3 {
		t.Errorf("sources = %d, want 3", len(answer.Sources))
	}
}

func TestReloadRestoresState(t *testing.T) {
	e, st := newTestEngine()
	ctx := context.Background()

	if _, err := e.Ingest(ctx, []common.RawDocument{
		stressDoc("Persisted Study", "https://a.example"),
	}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	fresh := New(NewParams{
		Embedder: fallback.NewClient(fallback.NewClientParams{}),
		Store:    st,
	})
	if err := fresh.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	related, err := fresh.RelatedConcepts("stress_level", 1)
	if err != nil {
		t.Fatalf("RelatedConcepts() error = %v", err)
	}
	if len(related) != 1 {
		t.Errorf("related after reload = %v, want one concept", related)
	}
	answer, err := fresh.Ask(ctx, "stress and heart rate")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(answer.Sources) != 1 {
		t.Errorf("sources after reload = %d, want 1", len(answer.Sources))
	}
}

func TestRelatedConceptsUnknownEntity(t *testing.T) {
	e, _ := newTestEngine()

	if _, err := e.RelatedConcepts("unicorn", 1); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	batch := []common.RawDocument{stressDoc("Once Only", "https://a.example")}
	if _, err := e.Ingest(ctx, batch); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	res, err := e.Ingest(ctx, batch)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if res.Duplicates != 1 || res.Admitted != 0 {
		t.Errorf("result = %+v, want the batch rejected as duplicate", res)
	}

	stats, err := e.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Documents != 1 {
		t.Errorf("documents = %d, want 1", stats.Documents)
	}
}

func TestInsightsRecognizesMetricFields(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	if _, err := e.Ingest(ctx, []common.RawDocument{
		{
			Title:         "Meditation Lowers Stress",
			Content:       "A randomized controlled trial: meditation reduces stress levels.",
			URL:           "https://a.example",
			SourceName:    "pubmed",
			PublishedDate: "2025-01-01",
			CitationCount: 50,
		},
	}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	insights := e.Insights(map[string]float64{
		"stress_level": 0.9,
		"unknown_key":  1.0,
	})
	if len(insights) != 1 || insights[0].Field != "stress_level" {
		t.Fatalf("insights = %v, want one for stress_level", insights)
	}
	if len(insights[0].Recommendations) == 0 {
		t.Error("no recommendations for a decreases edge")
	}
}
