package memory

import (
	"context"
	"sync"

	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/store"
)

// Storage is an in-memory store.Storage used in tests and for running
// the engine without Postgres. Documents keep insertion order.
type Storage struct {
	mu    sync.RWMutex
	docs  []common.Document
	nodes []common.Entity
	edges []common.Relation
}

// NewStorage returns an empty in-memory store.
func NewStorage() *Storage {
	return &Storage{}
}

func (s *Storage) InsertDocuments(ctx context.Context, docs []common.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
	return nil
}

func (s *Storage) ListDocuments(ctx context.Context) ([]common.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]common.Document, len(s.docs))
	copy(out, s.docs)
	return out, nil
}

func (s *Storage) ExistingKeys(ctx context.Context) (store.Keys, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := store.NewKeys()
	for _, doc := range s.docs {
		keys.Add(doc.Title, doc.URL)
	}
	return keys, nil
}

func (s *Storage) SaveGraph(ctx context.Context, nodes []common.Entity, edges []common.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append([]common.Entity(nil), nodes...)
	s.edges = append([]common.Relation(nil), edges...)
	return nil
}

func (s *Storage) LoadGraph(ctx context.Context) ([]common.Entity, []common.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := append([]common.Entity(nil), s.nodes...)
	edges := append([]common.Relation(nil), s.edges...)
	return nodes, edges, nil
}

func (s *Storage) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := store.Stats{
		Documents:  len(s.docs),
		TierCounts: make(map[common.QualityTier]int),
		Nodes:      len(s.nodes),
		Edges:      len(s.edges),
	}
	var sum float64
	for _, doc := range s.docs {
		stats.TierCounts[doc.QualityTier()]++
		sum += doc.QualityScore
	}
	if len(s.docs) > 0 {
		stats.MeanScore = sum / float64(len(s.docs))
	}
	return stats, nil
}
