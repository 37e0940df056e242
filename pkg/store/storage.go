package store

import (
	"context"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

// Keys holds the identity sets of the persisted corpus, used to reject
// duplicates before scoring. Matching is exact and case sensitive.
type Keys struct {
	Titles map[string]struct{}
	URLs   map[string]struct{}
}

// NewKeys returns an empty key set.
func NewKeys() Keys {
	return Keys{
		Titles: make(map[string]struct{}),
		URLs:   make(map[string]struct{}),
	}
}

// Has reports whether the title or the url is already taken.
func (k Keys) Has(title, url string) bool {
	if _, ok := k.Titles[title]; ok {
		return true
	}
	_, ok := k.URLs[url]
	return ok
}

// Add claims a title and url.
func (k Keys) Add(title, url string) {
	k.Titles[title] = struct{}{}
	k.URLs[url] = struct{}{}
}

// Stats summarizes the persisted corpus and graph.
type Stats struct {
	Documents  int                        `json:"documents"`
	TierCounts map[common.QualityTier]int `json:"tier_counts"`
	MeanScore  float64                    `json:"mean_score"`
	Nodes      int                        `json:"nodes"`
	Edges      int                        `json:"edges"`
}

// Storage persists the admitted corpus and the knowledge graph.
// Implementations wrap transient infrastructure failures with
// common.Transient so callers can retry them.
type Storage interface {
	InsertDocuments(ctx context.Context, docs []common.Document) error
	ListDocuments(ctx context.Context) ([]common.Document, error)
	ExistingKeys(ctx context.Context) (Keys, error)
	SaveGraph(ctx context.Context, nodes []common.Entity, edges []common.Relation) error
	LoadGraph(ctx context.Context) ([]common.Entity, []common.Relation, error)
	Stats(ctx context.Context) (Stats, error)
}
