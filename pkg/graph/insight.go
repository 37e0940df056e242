package graph

import (
	"fmt"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

const maxRecommendationsPerField = 3

// Insight bundles the graph neighborhood and derived recommendations
// for one recognized biometric field.
type Insight struct {
	Field           string                  `json:"field"`
	Related         []common.RelatedConcept `json:"related"`
	Recommendations []common.Recommendation `json:"recommendations"`
}

// Insights derives actionable suggestions for the recognized metric
// fields. Only edges whose relation reduces or improves the metric
// become recommendations; confidence scales with accumulated edge
// weight and saturates at ten supporting documents.
func (s *Snapshot) Insights(metrics map[string]float64, recognized []string) []Insight {
	var out []Insight
	for _, field := range recognized {
		if _, ok := metrics[field]; !ok {
			continue
		}
		related := s.FindRelated(field, defaultMaxDepth)
		if related == nil {
			continue
		}

		var recs []common.Recommendation
		for _, rc := range related {
			if len(recs) >= maxRecommendationsPerField {
				break
			}
			if rc.Relation != common.RelationDecreases && rc.Relation != common.RelationImproves {
				continue
			}
			confidence := float64(rc.Weight) / 10
			if confidence > 1 {
				confidence = 1
			}
			recs = append(recs, common.Recommendation{
				Action:     string(rc.Relation),
				Entity:     rc.Entity,
				Reason:     fmt.Sprintf("%s %s %s", rc.Entity, rc.Relation, field),
				Confidence: confidence,
			})
		}

		out = append(out, Insight{
			Field:           field,
			Related:         related,
			Recommendations: recs,
		})
	}
	return out
}

// BiometricFields lists the taxonomy names in the biometric category,
// the set of metric fields Insights knows how to interpret.
func BiometricFields(terms []EntityTerm) []string {
	var fields []string
	for _, term := range terms {
		if term.Category == common.CategoryBiometric {
			fields = append(fields, term.Name)
		}
	}
	return fields
}
