package graph

import (
	"sync"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

type edgeKey struct {
	source  string
	target  string
	relType common.RelationType
}

// KnowledgeGraph accumulates entities and weighted relations across
// admitted documents. All mutation happens under a single writer lock;
// readers work from immutable snapshots.
type KnowledgeGraph struct {
	mu    sync.RWMutex
	nodes map[string]*common.Entity
	edges map[edgeKey]*common.Relation

	// adjacency preserves edge insertion order per source node so
	// traversal results are deterministic across runs.
	adjacency map[string][]edgeKey
}

// NewKnowledgeGraph returns an empty graph.
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		nodes:     make(map[string]*common.Entity),
		edges:     make(map[edgeKey]*common.Relation),
		adjacency: make(map[string][]edgeKey),
	}
}

// AddDocument merges one document's extracted entities and relations
// into the graph. Every ordered pair of distinct entities is connected
// once per detected relation type; repeated evidence raises the edge
// weight and appends provenance.
func (g *KnowledgeGraph) AddDocument(doc common.Document, entities []common.Entity, relations []common.RelationType) {
	if len(entities) == 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, e := range entities {
		node, ok := g.nodes[e.Name]
		if !ok {
			g.nodes[e.Name] = &common.Entity{Name: e.Name, Category: e.Category, Count: 1}
			continue
		}
		node.Count++
	}

	prov := common.Provenance{
		Title:        doc.Title,
		SourceName:   doc.SourceName,
		QualityScore: doc.QualityScore,
	}

	for i := range entities {
		for j := range entities {
			if i == j {
				continue
			}
			for _, rel := range relations {
				key := edgeKey{source: entities[i].Name, target: entities[j].Name, relType: rel}
				edge, ok := g.edges[key]
				if !ok {
					g.edges[key] = &common.Relation{
						Source:     key.source,
						Target:     key.target,
						Type:       rel,
						Weight:     1,
						Provenance: []common.Provenance{prov},
					}
					g.adjacency[key.source] = append(g.adjacency[key.source], key)
					continue
				}
				edge.Weight++
				edge.Provenance = append(edge.Provenance, prov)
			}
		}
	}
}

// Load replaces the graph contents with persisted state. Edges are
// re-linked in the order given, which callers should keep stable.
func (g *KnowledgeGraph) Load(nodes []common.Entity, edges []common.Relation) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[string]*common.Entity, len(nodes))
	g.edges = make(map[edgeKey]*common.Relation, len(edges))
	g.adjacency = make(map[string][]edgeKey)

	for _, n := range nodes {
		node := n
		g.nodes[n.Name] = &node
	}
	for _, e := range edges {
		edge := e
		key := edgeKey{source: e.Source, target: e.Target, relType: e.Type}
		g.edges[key] = &edge
		g.adjacency[e.Source] = append(g.adjacency[e.Source], key)
	}
}

// Snapshot is a point-in-time, read-only copy of the graph. Snapshots
// are safe to share across goroutines and never observe later writes.
type Snapshot struct {
	nodes     map[string]common.Entity
	edges     map[edgeKey]common.Relation
	adjacency map[string][]edgeKey
}

// Snapshot deep-copies the current graph state.
func (g *KnowledgeGraph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := &Snapshot{
		nodes:     make(map[string]common.Entity, len(g.nodes)),
		edges:     make(map[edgeKey]common.Relation, len(g.edges)),
		adjacency: make(map[string][]edgeKey, len(g.adjacency)),
	}
	for name, node := range g.nodes {
		s.nodes[name] = *node
	}
	for key, edge := range g.edges {
		e := *edge
		e.Provenance = append([]common.Provenance(nil), edge.Provenance...)
		s.edges[key] = e
	}
	for source, keys := range g.adjacency {
		s.adjacency[source] = append([]edgeKey(nil), keys...)
	}
	return s
}

// Export returns the graph contents as flat slices for persistence.
// Edge order follows per-node insertion order.
func (g *KnowledgeGraph) Export() ([]common.Entity, []common.Relation) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]common.Entity, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, *node)
	}

	edges := make([]common.Relation, 0, len(g.edges))
	for _, keys := range g.adjacency {
		for _, key := range keys {
			edge := *g.edges[key]
			edge.Provenance = append([]common.Provenance(nil), g.edges[key].Provenance...)
			edges = append(edges, edge)
		}
	}
	return nodes, edges
}

// Counts reports the node and edge totals.
func (g *KnowledgeGraph) Counts() (nodes int, edges int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes), len(g.edges)
}

// Node looks up a node in the snapshot.
func (s *Snapshot) Node(name string) (common.Entity, bool) {
	node, ok := s.nodes[name]
	return node, ok
}

// Counts reports the snapshot's node and edge totals.
func (s *Snapshot) Counts() (nodes int, edges int) {
	return len(s.nodes), len(s.edges)
}
