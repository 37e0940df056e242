package advisor

import (
	"context"
	"strings"
	"testing"

	"github.com/mkm-lab/analysis-engine/pkg/ai/fallback"
	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/retrieval"
)

func newTestAdvisor() (*Advisor, *fallback.Client) {
	embedder := fallback.NewClient(fallback.NewClientParams{})
	return NewAdvisor(retrieval.NewEngine(embedder, 384), 3), embedder
}

func embeddedDoc(t *testing.T, embedder *fallback.Client, title, summary string, score float64) common.Document {
	t.Helper()
	vec, err := embedder.GenerateEmbedding(context.Background(), []byte(title))
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}
	return common.Document{
		Title:        title,
		Summary:      summary,
		SourceName:   "pubmed",
		EvidenceTier: common.EvidenceRCT,
		QualityScore: score,
		Embedding:    vec,
	}
}

func TestAskCitesSources(t *testing.T) {
	a, embedder := newTestAdvisor()

	corpus := []common.Document{
		embeddedDoc(t, embedder, "Does meditation reduce stress?", "Meditation lowers cortisol.", 0.9),
		embeddedDoc(t, embedder, "Exercise and sleep", "Exercise improves sleep quality.", 0.7),
	}

	got, err := a.Ask(context.Background(), "Does meditation reduce stress?", corpus)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if len(got.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(got.Sources))
	}
	if got.Sources[0].Title != "Does meditation reduce stress?" {
		t.Errorf("top source = %q, want the identically-phrased document", got.Sources[0].Title)
	}
	if !strings.Contains(got.Answer, "Meditation lowers cortisol.") {
		t.Errorf("answer %q does not quote the top summary", got.Answer)
	}
	if diff := got.Confidence - 0.8; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("confidence = %f, want mean source quality 0.8", got.Confidence)
	}
}

func TestAskEmptyCorpusFallback(t *testing.T) {
	a, _ := newTestAdvisor()

	got, err := a.Ask(context.Background(), "anything", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got.Answer != noSourceAnswer {
		t.Errorf("answer = %q, want fallback message", got.Answer)
	}
	if got.Confidence != 0 || len(got.Sources) != 0 {
		t.Errorf("fallback answer carried confidence %f and %d sources", got.Confidence, len(got.Sources))
	}
}

func TestAskSkipsUnembeddedDocuments(t *testing.T) {
	a, embedder := newTestAdvisor()

	corpus := []common.Document{
		{Title: "Unembedded", QualityScore: 0.9},
		embeddedDoc(t, embedder, "Embedded", "The only retrievable source.", 0.6),
	}

	got, err := a.Ask(context.Background(), "question", corpus)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(got.Sources) != 1 || got.Sources[0].Title != "Embedded" {
		t.Errorf("sources = %v, want only the embedded document", got.Sources)
	}
}

func TestAskTopKLimit(t *testing.T) {
	a, embedder := newTestAdvisor()

	var corpus []common.Document
	for _, title := range []string{"one", "two", "three", "four", "five"} {
		corpus = append(corpus, embeddedDoc(t, embedder, title, "", 0.5))
	}

	got, err := a.Ask(context.Background(), "query", corpus)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(got.Sources) != 3 {
		t.Errorf("sources = %d, want top 3", len(got.Sources))
	}
}
