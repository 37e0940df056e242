package common

import "time"

// EvidenceTier classifies the study rigor behind a document, from
// randomized controlled trials down to expert opinion.
type EvidenceTier string

const (
	EvidenceRCT         EvidenceTier = "rct"
	EvidenceCohort      EvidenceTier = "cohort"
	EvidenceCaseControl EvidenceTier = "case_control"
	EvidenceCaseSeries  EvidenceTier = "case_series"
	EvidencePreclinical EvidenceTier = "preclinical"
	EvidenceExpert      EvidenceTier = "expert_opinion"
)

// QualityTier buckets a composite quality score for reporting and for
// deciding which documents feed the knowledge graph.
type QualityTier string

const (
	QualityHigh   QualityTier = "high"
	QualityMedium QualityTier = "medium"
	QualityLow    QualityTier = "low"
)

// RawDocument is a collected document as delivered by external
// collectors, before admission into the corpus.
type RawDocument struct {
	Title         string   `json:"title" validate:"required"`
	Summary       string   `json:"summary"`
	Content       string   `json:"content"`
	URL           string   `json:"url" validate:"required"`
	SourceType    string   `json:"source_type"`
	SourceName    string   `json:"source_name"`
	PublishedDate string   `json:"published_date"`
	Keywords      []string `json:"keywords"`
	CitationCount int      `json:"citation_count"`
}

// Document is an admitted corpus entry. Documents are immutable once
// admitted and uniquely identified by their (title, url) pair.
//
// Embedding is nil for documents that could not be embedded; such
// documents stay in the corpus but are excluded from retrieval.
type Document struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Summary       string       `json:"summary"`
	Content       string       `json:"content"`
	URL           string       `json:"url"`
	SourceType    string       `json:"source_type"`
	SourceName    string       `json:"source_name"`
	PublishedDate string       `json:"published_date"`
	Keywords      []string     `json:"keywords"`
	CitationCount int          `json:"citation_count"`
	QualityScore  float64      `json:"quality_score"`
	EvidenceTier  EvidenceTier `json:"evidence_tier"`
	Embedding     []float32    `json:"embedding,omitempty"`
	ProcessedAt   time.Time    `json:"processed_at"`
}

// QualityTier maps the document's composite score to its bucket.
func (d Document) QualityTier() QualityTier {
	return TierForScore(d.QualityScore)
}

// TierForScore buckets a composite score: high >= 0.8, medium >= 0.5,
// low otherwise.
func TierForScore(score float64) QualityTier {
	switch {
	case score >= 0.8:
		return QualityHigh
	case score >= 0.5:
		return QualityMedium
	default:
		return QualityLow
	}
}

// EntityCategory is the fixed taxonomy a graph node belongs to.
type EntityCategory string

const (
	CategoryBiometric      EntityCategory = "biometric"
	CategoryPsychological  EntityCategory = "psychological"
	CategoryHealthBehavior EntityCategory = "health_behavior"
	CategoryEnvironmental  EntityCategory = "environmental"
	CategoryPersona        EntityCategory = "persona"
)

// Entity is a node in the knowledge graph. Count is the number of
// admitted documents the entity was detected in; it only ever grows.
type Entity struct {
	Name     string         `json:"name"`
	Category EntityCategory `json:"category"`
	Count    int            `json:"count"`
}

// RelationType labels a directed edge between two entities.
type RelationType string

const (
	RelationIncreases      RelationType = "increases"
	RelationDecreases      RelationType = "decreases"
	RelationCorrelatesWith RelationType = "correlates_with"
	RelationCauses         RelationType = "causes"
	RelationPrevents       RelationType = "prevents"
	RelationImproves       RelationType = "improves"
)

// Provenance records one document's contribution to a graph edge.
type Provenance struct {
	Title        string  `json:"title"`
	SourceName   string  `json:"source_name"`
	QualityScore float64 `json:"quality_score"`
}

// Relation is a weighted directed edge, keyed by (source, target,
// type). Weight counts contributing documents; Provenance grows
// append-only alongside it.
type Relation struct {
	Source     string       `json:"source"`
	Target     string       `json:"target"`
	Type       RelationType `json:"relation_type"`
	Weight     int          `json:"weight"`
	Provenance []Provenance `json:"provenance"`
}

// RelatedConcept is one traversal result from the graph query engine.
type RelatedConcept struct {
	Entity   string       `json:"entity"`
	Relation RelationType `json:"relation"`
	Weight   int          `json:"weight"`
	Depth    int          `json:"depth"`
}

// Recommendation is a graph-derived suggestion surfaced to the user,
// produced from edges whose relation is beneficial for the queried
// biometric field.
type Recommendation struct {
	Action     string  `json:"action"`
	Entity     string  `json:"entity"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}
