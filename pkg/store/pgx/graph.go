package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkm-lab/analysis-engine/pkg/common"

	pgxv5 "github.com/jackc/pgx/v5"
)

// SaveGraph upserts the full graph state inside one transaction. Node
// counts and edge weights are replaced, not accumulated; the in-memory
// graph is the source of truth and this is its checkpoint.
func (s *Storage) SaveGraph(ctx context.Context, nodes []common.Entity, edges []common.Relation) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return common.Transient(fmt.Errorf("failed to begin graph transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	batch := &pgxv5.Batch{}
	for _, node := range nodes {
		batch.Queue(`
			INSERT INTO graph_nodes (name, category, doc_count)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET
				category = excluded.category,
				doc_count = excluded.doc_count`,
			node.Name, string(node.Category), node.Count)
	}
	for i, edge := range edges {
		prov, err := json.Marshal(edge.Provenance)
		if err != nil {
			return fmt.Errorf("failed to encode provenance for edge %d: %w", i, err)
		}
		batch.Queue(`
			INSERT INTO graph_edges (source, target, relation_type, weight, provenance)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (source, target, relation_type) DO UPDATE SET
				weight = excluded.weight,
				provenance = excluded.provenance`,
			edge.Source, edge.Target, string(edge.Type), edge.Weight, prov)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < len(nodes)+len(edges); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return common.Transient(fmt.Errorf("failed to upsert graph element: %w", err))
		}
	}
	if err := results.Close(); err != nil {
		return common.Transient(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return common.Transient(fmt.Errorf("failed to commit graph transaction: %w", err))
	}
	return nil
}

// LoadGraph reads the persisted graph state. Edges come back ordered
// by source then insertion id so reloads rebuild identical adjacency.
func (s *Storage) LoadGraph(ctx context.Context) ([]common.Entity, []common.Relation, error) {
	rows, err := s.conn.Query(ctx, `SELECT name, category, doc_count FROM graph_nodes ORDER BY name`)
	if err != nil {
		return nil, nil, common.Transient(fmt.Errorf("failed to load graph nodes: %w", err))
	}
	defer rows.Close()

	var nodes []common.Entity
	for rows.Next() {
		var (
			node     common.Entity
			category string
		)
		if err := rows.Scan(&node.Name, &category, &node.Count); err != nil {
			return nil, nil, common.Transient(err)
		}
		node.Category = common.EntityCategory(category)
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, common.Transient(err)
	}

	edgeRows, err := s.conn.Query(ctx, `
		SELECT source, target, relation_type, weight, provenance
		FROM graph_edges
		ORDER BY source, id`)
	if err != nil {
		return nil, nil, common.Transient(fmt.Errorf("failed to load graph edges: %w", err))
	}
	defer edgeRows.Close()

	var edges []common.Relation
	for edgeRows.Next() {
		var (
			edge    common.Relation
			relType string
			prov    []byte
		)
		if err := edgeRows.Scan(&edge.Source, &edge.Target, &relType, &edge.Weight, &prov); err != nil {
			return nil, nil, common.Transient(err)
		}
		edge.Type = common.RelationType(relType)
		if len(prov) > 0 {
			if err := json.Unmarshal(prov, &edge.Provenance); err != nil {
				return nil, nil, fmt.Errorf("failed to decode edge provenance: %w", err)
			}
		}
		edges = append(edges, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, nil, common.Transient(err)
	}
	return nodes, edges, nil
}
