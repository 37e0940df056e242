package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/retrieval"
)

const noSourceAnswer = "No reliable source found for this question. Consider consulting a healthcare professional."

// Citation is one source document backing an answer.
type Citation struct {
	Title        string  `json:"title"`
	SourceName   string  `json:"source_name"`
	SourceType   string  `json:"source_type"`
	EvidenceTier string  `json:"evidence_tier"`
	QualityScore float64 `json:"quality_score"`
	Similarity   float64 `json:"similarity"`
	URL          string  `json:"url"`
	Summary      string  `json:"summary"`
}

// Answer is a grounded response assembled from the retrieved sources.
type Answer struct {
	Answer     string     `json:"answer"`
	Confidence float64    `json:"confidence"`
	Sources    []Citation `json:"sources"`
}

// Advisor answers free-text questions by quoting the most similar
// corpus documents. It performs no generation; the answer text is
// assembled from retrieved summaries so every statement traces back to
// a citation.
type Advisor struct {
	retriever *retrieval.Engine
	topK      int
}

// NewAdvisor creates an advisor over a retrieval engine. A non-positive
// topK defaults to three sources per answer.
func NewAdvisor(retriever *retrieval.Engine, topK int) *Advisor {
	if topK <= 0 {
		topK = 3
	}
	return &Advisor{retriever: retriever, topK: topK}
}

// Ask retrieves the strongest sources for the question and composes a
// cited answer. An empty corpus, or one with no retrievable documents,
// yields the fallback answer with zero confidence.
func (a *Advisor) Ask(ctx context.Context, question string, corpus []common.Document) (*Answer, error) {
	scored, err := a.retriever.Retrieve(ctx, question, corpus, a.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sources: %w", err)
	}
	if len(scored) == 0 {
		return &Answer{Answer: noSourceAnswer}, nil
	}

	citations := make([]Citation, len(scored))
	var confidence float64
	var b strings.Builder
	b.WriteString("Based on the available research:\n")
	for i, doc := range scored {
		citations[i] = Citation{
			Title:        doc.Title,
			SourceName:   doc.SourceName,
			SourceType:   doc.SourceType,
			EvidenceTier: string(doc.EvidenceTier),
			QualityScore: doc.QualityScore,
			Similarity:   doc.Similarity,
			URL:          doc.URL,
			Summary:      doc.Summary,
		}
		confidence += doc.QualityScore

		summary := doc.Summary
		if summary == "" {
			summary = doc.Title
		}
		fmt.Fprintf(&b, "%d. %s (%s, %s)\n", i+1, summary, doc.SourceName, doc.EvidenceTier)
	}

	return &Answer{
		Answer:     b.String(),
		Confidence: confidence / float64(len(scored)),
		Sources:    citations,
	}, nil
}
