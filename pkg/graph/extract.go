package graph

import (
	"strings"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

// EntityTerm binds a canonical entity name to the lowercase surface
// patterns that detect it in text.
type EntityTerm struct {
	Name     string
	Category common.EntityCategory
	Patterns []string
}

// RelationPattern binds a relation type to the lowercase trigger
// phrases that detect it.
type RelationPattern struct {
	Type     common.RelationType
	Patterns []string
}

// ExtractorStrategy turns an admitted document into the entities and
// relation types it mentions. Implementations must be safe for
// concurrent use.
type ExtractorStrategy interface {
	Extract(doc common.Document) ([]common.Entity, []common.RelationType)
}

const defaultMaxEntities = 32

// KeywordExtractor detects entities and relations by case-insensitive
// substring matching against a fixed taxonomy. It is the deterministic
// baseline strategy; a model-backed extractor can replace it behind
// ExtractorStrategy without touching the graph builder.
type KeywordExtractor struct {
	terms       []EntityTerm
	relations   []RelationPattern
	maxEntities int
}

// NewKeywordExtractor builds an extractor over the given taxonomy. Nil
// slices fall back to the defaults.
func NewKeywordExtractor(terms []EntityTerm, relations []RelationPattern) *KeywordExtractor {
	if terms == nil {
		terms = DefaultTaxonomy()
	}
	if relations == nil {
		relations = DefaultRelationPatterns()
	}
	return &KeywordExtractor{
		terms:       terms,
		relations:   relations,
		maxEntities: defaultMaxEntities,
	}
}

// Extract scans the document's title and content. Each taxonomy term
// is reported at most once per document regardless of how often its
// patterns occur.
func (e *KeywordExtractor) Extract(doc common.Document) ([]common.Entity, []common.RelationType) {
	text := strings.ToLower(doc.Title + " " + doc.Content)

	var entities []common.Entity
	for _, term := range e.terms {
		if len(entities) >= e.maxEntities {
			break
		}
		for _, pattern := range term.Patterns {
			if strings.Contains(text, pattern) {
				entities = append(entities, common.Entity{
					Name:     term.Name,
					Category: term.Category,
					Count:    1,
				})
				break
			}
		}
	}

	var relations []common.RelationType
	for _, rel := range e.relations {
		for _, pattern := range rel.Patterns {
			if strings.Contains(text, pattern) {
				relations = append(relations, rel.Type)
				break
			}
		}
	}

	return entities, relations
}

// Terms exposes the extractor's taxonomy, e.g. for recognizing which
// metric names in a user query are known graph entities.
func (e *KeywordExtractor) Terms() []EntityTerm {
	return e.terms
}

// DefaultTaxonomy is the built-in entity taxonomy covering biometric
// signals, psychological states, health behaviors, environmental
// factors and persona archetypes.
func DefaultTaxonomy() []EntityTerm {
	return []EntityTerm{
		{Name: "heart_rate", Category: common.CategoryBiometric, Patterns: []string{"heart_rate", "heart rate", "hrv"}},
		{Name: "blood_pressure", Category: common.CategoryBiometric, Patterns: []string{"blood_pressure", "blood pressure"}},
		{Name: "stress_level", Category: common.CategoryBiometric, Patterns: []string{"stress_level", "stress level", "stress"}},
		{Name: "sleep_quality", Category: common.CategoryBiometric, Patterns: []string{"sleep_quality", "sleep quality"}},
		{Name: "energy_level", Category: common.CategoryBiometric, Patterns: []string{"energy_level", "energy level", "energy"}},

		{Name: "anxiety", Category: common.CategoryPsychological, Patterns: []string{"anxiety", "anxious"}},
		{Name: "depression", Category: common.CategoryPsychological, Patterns: []string{"depression", "depressive"}},
		{Name: "happiness", Category: common.CategoryPsychological, Patterns: []string{"happiness", "happy"}},
		{Name: "mood", Category: common.CategoryPsychological, Patterns: []string{"mood"}},
		{Name: "emotion", Category: common.CategoryPsychological, Patterns: []string{"emotion"}},

		{Name: "exercise", Category: common.CategoryHealthBehavior, Patterns: []string{"exercise", "physical activity", "workout"}},
		{Name: "meditation", Category: common.CategoryHealthBehavior, Patterns: []string{"meditation", "mindfulness"}},
		{Name: "diet", Category: common.CategoryHealthBehavior, Patterns: []string{"diet", "nutrition"}},
		{Name: "sleep", Category: common.CategoryHealthBehavior, Patterns: []string{"sleep"}},
		{Name: "social_interaction", Category: common.CategoryHealthBehavior, Patterns: []string{"social_interaction", "social interaction", "social support"}},

		{Name: "weather", Category: common.CategoryEnvironmental, Patterns: []string{"weather"}},
		{Name: "temperature", Category: common.CategoryEnvironmental, Patterns: []string{"temperature"}},
		{Name: "humidity", Category: common.CategoryEnvironmental, Patterns: []string{"humidity"}},
		{Name: "air_quality", Category: common.CategoryEnvironmental, Patterns: []string{"air_quality", "air quality"}},
		{Name: "season", Category: common.CategoryEnvironmental, Patterns: []string{"season"}},

		{Name: "therapeutic", Category: common.CategoryPersona, Patterns: []string{"therapeutic"}},
		{Name: "balanced", Category: common.CategoryPersona, Patterns: []string{"balanced"}},
		{Name: "dynamic", Category: common.CategoryPersona, Patterns: []string{"dynamic"}},
		{Name: "fulfilling", Category: common.CategoryPersona, Patterns: []string{"fulfilling"}},
		{Name: "nurturing", Category: common.CategoryPersona, Patterns: []string{"nurturing"}},
	}
}

// DefaultRelationPatterns is the built-in relation trigger table.
func DefaultRelationPatterns() []RelationPattern {
	return []RelationPattern{
		{Type: common.RelationIncreases, Patterns: []string{"increase", "raise", "elevate", "boost", "enhance"}},
		{Type: common.RelationDecreases, Patterns: []string{"decrease", "reduce", "lower", "diminish", "suppress"}},
		{Type: common.RelationCorrelatesWith, Patterns: []string{"correlate", "associate", "relate", "connect", "link"}},
		{Type: common.RelationCauses, Patterns: []string{"cause", "lead to", "result in", "trigger", "induce"}},
		{Type: common.RelationPrevents, Patterns: []string{"prevent", "protect", "shield", "guard", "defend"}},
		{Type: common.RelationImproves, Patterns: []string{"improve", "enhance", "better", "optimize", "strengthen"}},
	}
}
