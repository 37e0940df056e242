package scoring

import "github.com/mkm-lab/analysis-engine/pkg/common"

// SourceWeight assigns a credibility weight to sources whose name
// contains Pattern. Patterns are checked in order; the first match
// wins.
type SourceWeight struct {
	Pattern string
	Weight  float64
}

// EvidenceKeywords associates an evidence tier with the content
// keywords that indicate it. Tiers are checked in the order they
// appear in the config; the first tier with a matching keyword wins.
type EvidenceKeywords struct {
	Tier     common.EvidenceTier
	Keywords []string
}

// Config holds the immutable lookup tables driving the scorer. Zero
// fields fall back to the defaults below, so test fixtures can swap a
// single table without restating the rest.
type Config struct {
	SourceWeights       []SourceWeight
	DefaultSourceWeight float64
	EvidenceKeywords    []EvidenceKeywords
	EvidenceWeights     map[common.EvidenceTier]float64
}

// DefaultSourceWeights returns the built-in source credibility table:
// top-tier journals 1.0, indexed repositories 0.9, scholar networks
// 0.7, blogs and forums 0.5.
func DefaultSourceWeights() []SourceWeight {
	return []SourceWeight{
		{Pattern: "pubmed", Weight: 1.0},
		{Pattern: "nature", Weight: 1.0},
		{Pattern: "science", Weight: 1.0},
		{Pattern: "lancet", Weight: 1.0},
		{Pattern: "nejm", Weight: 1.0},
		{Pattern: "jama", Weight: 1.0},
		{Pattern: "arxiv", Weight: 0.9},
		{Pattern: "ieee", Weight: 0.9},
		{Pattern: "acm", Weight: 0.9},
		{Pattern: "springer", Weight: 0.9},
		{Pattern: "elsevier", Weight: 0.9},
		{Pattern: "google_scholar", Weight: 0.7},
		{Pattern: "researchgate", Weight: 0.7},
		{Pattern: "academia", Weight: 0.7},
		{Pattern: "blog", Weight: 0.5},
		{Pattern: "community", Weight: 0.5},
		{Pattern: "forum", Weight: 0.5},
	}
}

// DefaultEvidenceKeywords returns the tier keyword sets in priority
// order: RCT > cohort > case-control > case series > preclinical >
// expert opinion.
func DefaultEvidenceKeywords() []EvidenceKeywords {
	return []EvidenceKeywords{
		{
			Tier: common.EvidenceRCT,
			Keywords: []string{
				"randomized controlled trial", "rct", "randomized", "randomised",
				"double-blind", "placebo-controlled", "clinical trial",
			},
		},
		{
			Tier: common.EvidenceCohort,
			Keywords: []string{
				"cohort study", "prospective study", "longitudinal study",
				"follow-up study", "observational study",
			},
		},
		{
			Tier: common.EvidenceCaseControl,
			Keywords: []string{
				"case-control study", "case control", "retrospective study",
			},
		},
		{
			Tier: common.EvidenceCaseSeries,
			Keywords: []string{
				"case series", "case report", "case study",
			},
		},
		{
			Tier: common.EvidencePreclinical,
			Keywords: []string{
				"in vitro", "in vivo", "animal study", "preclinical",
				"laboratory study", "cell culture",
			},
		},
		{
			Tier: common.EvidenceExpert,
			Keywords: []string{
				"expert opinion", "review", "commentary", "perspective",
			},
		},
	}
}

// DefaultEvidenceWeights returns the fixed tier weighting used in the
// composite score.
func DefaultEvidenceWeights() map[common.EvidenceTier]float64 {
	return map[common.EvidenceTier]float64{
		common.EvidenceRCT:         1.0,
		common.EvidenceCohort:      0.8,
		common.EvidenceCaseControl: 0.6,
		common.EvidencePreclinical: 0.5,
		common.EvidenceCaseSeries:  0.4,
		common.EvidenceExpert:      0.3,
	}
}
