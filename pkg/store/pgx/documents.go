package pgx

import (
	"context"
	"fmt"

	"github.com/mkm-lab/analysis-engine/internal/util"
	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const insertDocumentSQL = `
	INSERT INTO documents (
		id, title, summary, content, url, source_type, source_name,
		published_date, keywords, citation_count, quality_score,
		evidence_tier, embedding, processed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO NOTHING`

// InsertDocuments persists a batch of admitted documents in a single
// pipelined batch. Documents without an embedding store a NULL vector.
func (s *Storage) InsertDocuments(ctx context.Context, docs []common.Document) error {
	if len(docs) == 0 {
		return nil
	}

	batch := &pgxv5.Batch{}
	for _, doc := range docs {
		var embedding any
		if doc.Embedding != nil {
			embedding = pgvector.NewVector(doc.Embedding)
		}
		batch.Queue(insertDocumentSQL,
			doc.ID,
			util.SanitizePostgresText(doc.Title),
			util.SanitizePostgresText(doc.Summary),
			util.SanitizePostgresText(doc.Content),
			doc.URL,
			doc.SourceType,
			doc.SourceName,
			doc.PublishedDate,
			doc.Keywords,
			doc.CitationCount,
			doc.QualityScore,
			string(doc.EvidenceTier),
			embedding,
			doc.ProcessedAt,
		)
	}

	results := s.conn.SendBatch(ctx, batch)
	defer results.Close()
	for range docs {
		if _, err := results.Exec(); err != nil {
			return common.Transient(fmt.Errorf("failed to insert document: %w", err))
		}
	}
	return nil
}

// ListDocuments returns the whole corpus in stable admission order.
func (s *Storage) ListDocuments(ctx context.Context) ([]common.Document, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, title, summary, content, url, source_type, source_name,
			published_date, keywords, citation_count, quality_score,
			evidence_tier, embedding, processed_at
		FROM documents
		ORDER BY processed_at, id`)
	if err != nil {
		return nil, common.Transient(fmt.Errorf("failed to list documents: %w", err))
	}
	defer rows.Close()

	var docs []common.Document
	for rows.Next() {
		var (
			doc       common.Document
			tier      string
			embedding *pgvector.Vector
		)
		if err := rows.Scan(
			&doc.ID, &doc.Title, &doc.Summary, &doc.Content, &doc.URL,
			&doc.SourceType, &doc.SourceName, &doc.PublishedDate,
			&doc.Keywords, &doc.CitationCount, &doc.QualityScore,
			&tier, &embedding, &doc.ProcessedAt,
		); err != nil {
			return nil, common.Transient(fmt.Errorf("failed to scan document: %w", err))
		}
		doc.EvidenceTier = common.EvidenceTier(tier)
		if embedding != nil {
			doc.Embedding = embedding.Slice()
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Transient(err)
	}
	return docs, nil
}

// ExistingKeys loads the title and url identity sets of the corpus.
func (s *Storage) ExistingKeys(ctx context.Context) (store.Keys, error) {
	keys := store.NewKeys()

	rows, err := s.conn.Query(ctx, `SELECT title, url FROM documents`)
	if err != nil {
		return keys, common.Transient(fmt.Errorf("failed to load document keys: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var title, url string
		if err := rows.Scan(&title, &url); err != nil {
			return keys, common.Transient(err)
		}
		keys.Add(title, url)
	}
	if err := rows.Err(); err != nil {
		return keys, common.Transient(err)
	}
	return keys, nil
}

// Stats aggregates corpus and graph totals in one round trip each.
func (s *Storage) Stats(ctx context.Context) (store.Stats, error) {
	stats := store.Stats{TierCounts: make(map[common.QualityTier]int)}

	row := s.conn.QueryRow(ctx, `
		SELECT count(*),
			coalesce(avg(quality_score), 0),
			count(*) FILTER (WHERE quality_score >= 0.8),
			count(*) FILTER (WHERE quality_score >= 0.5 AND quality_score < 0.8),
			count(*) FILTER (WHERE quality_score < 0.5)
		FROM documents`)

	var high, medium, low int
	if err := row.Scan(&stats.Documents, &stats.MeanScore, &high, &medium, &low); err != nil {
		return stats, common.Transient(fmt.Errorf("failed to aggregate documents: %w", err))
	}
	stats.TierCounts[common.QualityHigh] = high
	stats.TierCounts[common.QualityMedium] = medium
	stats.TierCounts[common.QualityLow] = low

	row = s.conn.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM graph_nodes),
			(SELECT count(*) FROM graph_edges)`)
	if err := row.Scan(&stats.Nodes, &stats.Edges); err != nil {
		return stats, common.Transient(fmt.Errorf("failed to aggregate graph: %w", err))
	}
	return stats, nil
}
