package graph

import (
	"sort"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

const (
	defaultMaxDepth   = 2
	maxRelatedResults = 10
)

// FindRelated walks the graph outward from the named entity and
// returns the strongest related concepts, ordered by descending edge
// weight. Ties keep discovery order. Traversal follows outgoing edges
// only and stops expanding at maxDepth hops; at most ten results are
// returned.
//
// An unknown entity yields nil.
func (s *Snapshot) FindRelated(entity string, maxDepth int) []common.RelatedConcept {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	if _, ok := s.nodes[entity]; !ok {
		return nil
	}

	type queueItem struct {
		name  string
		depth int
	}

	visited := map[string]bool{entity: true}
	queue := []queueItem{{name: entity, depth: 0}}

	var results []common.RelatedConcept
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}

		for _, key := range s.adjacency[cur.name] {
			edge := s.edges[key]
			results = append(results, common.RelatedConcept{
				Entity:   edge.Target,
				Relation: edge.Type,
				Weight:   edge.Weight,
				Depth:    cur.depth + 1,
			})
			if !visited[edge.Target] {
				visited[edge.Target] = true
				queue = append(queue, queueItem{name: edge.Target, depth: cur.depth + 1})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Weight > results[j].Weight
	})
	if len(results) > maxRelatedResults {
		results = results[:maxRelatedResults]
	}
	return results
}
