package scoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

// Composite score weights: source credibility dominates, then evidence
// tier, citations and recency.
const (
	sourceFactor   = 0.4
	evidenceFactor = 0.3
	citationFactor = 0.2
	recencyFactor  = 0.1

	citationSaturation = 100.0
	recencyWindowYears = 10

	defaultRecencyScore = 0.5
)

// Result is the outcome of scoring a single document.
type Result struct {
	Score    float64
	Evidence common.EvidenceTier
	Tier     common.QualityTier
}

// Scorer assigns a reproducible evidence tier and composite quality
// score to collected documents. It is pure: identical input yields an
// identical result for a fixed reference time.
//
// A Scorer should be created with NewScorer.
type Scorer struct {
	sourceWeights       []SourceWeight
	defaultSourceWeight float64
	evidenceKeywords    []EvidenceKeywords
	evidenceWeights     map[common.EvidenceTier]float64

	now func() time.Time
}

// NewScorer creates a Scorer from the given config. Empty config
// fields fall back to the defaults.
func NewScorer(cfg Config) *Scorer {
	s := &Scorer{
		sourceWeights:       cfg.SourceWeights,
		defaultSourceWeight: cfg.DefaultSourceWeight,
		evidenceKeywords:    cfg.EvidenceKeywords,
		evidenceWeights:     cfg.EvidenceWeights,
		now:                 time.Now,
	}
	if len(s.sourceWeights) == 0 {
		s.sourceWeights = DefaultSourceWeights()
	}
	if s.defaultSourceWeight == 0 {
		s.defaultSourceWeight = 0.5
	}
	if len(s.evidenceKeywords) == 0 {
		s.evidenceKeywords = DefaultEvidenceKeywords()
	}
	if len(s.evidenceWeights) == 0 {
		s.evidenceWeights = DefaultEvidenceWeights()
	}
	return s
}

// ClassifyEvidence scans content case-insensitively against the
// ordered tier keyword sets and returns the first matching tier.
// Documents matching nothing default to expert opinion.
func (s *Scorer) ClassifyEvidence(content string) common.EvidenceTier {
	lower := strings.ToLower(content)
	for _, ek := range s.evidenceKeywords {
		for _, keyword := range ek.Keywords {
			if strings.Contains(lower, keyword) {
				return ek.Tier
			}
		}
	}
	return common.EvidenceExpert
}

// Score computes the evidence tier and composite quality score for a
// collected document. The score is clamped to [0, 1].
func (s *Scorer) Score(doc common.RawDocument) Result {
	evidence := s.ClassifyEvidence(doc.Content)

	score := sourceFactor * s.sourceWeight(doc.SourceName)
	score += evidenceFactor * s.evidenceWeight(evidence)
	score += citationFactor * citationScore(doc.CitationCount)
	score += recencyFactor * s.recencyScore(doc.PublishedDate)

	score = clamp01(score)

	return Result{
		Score:    score,
		Evidence: evidence,
		Tier:     common.TierForScore(score),
	}
}

func (s *Scorer) sourceWeight(sourceName string) float64 {
	lower := strings.ToLower(sourceName)
	for _, sw := range s.sourceWeights {
		if strings.Contains(lower, sw.Pattern) {
			return sw.Weight
		}
	}
	return s.defaultSourceWeight
}

func (s *Scorer) evidenceWeight(tier common.EvidenceTier) float64 {
	if w, ok := s.evidenceWeights[tier]; ok {
		return w
	}
	return s.evidenceWeights[common.EvidenceExpert]
}

func citationScore(citations int) float64 {
	if citations <= 0 {
		return 0
	}
	return min(float64(citations)/citationSaturation, 1.0)
}

// recencyScore maps the publication year linearly over the trailing
// ten-year window: this year 1.0, ten or more years ago 0. Documents
// without a parseable year score the neutral default.
func (s *Scorer) recencyScore(publishedDate string) float64 {
	if len(publishedDate) < 4 {
		return defaultRecencyScore
	}
	year, err := strconv.Atoi(publishedDate[:4])
	if err != nil {
		return defaultRecencyScore
	}

	currentYear := s.now().Year()
	score := float64(year-(currentYear-recencyWindowYears)) / recencyWindowYears
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
