package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
	SendBatch(ctx context.Context, b *pgxv5.Batch) pgxv5.BatchResults
}

// Storage implements store.Storage on PostgreSQL with pgvector for the
// document embeddings. All infrastructure errors are wrapped as
// transient so the ingest pipeline retries them.
//
// A Storage should be created using NewStorageWithConnection.
type Storage struct {
	conn pgxIConn
}

// NewStorageWithConnection creates a Storage using an existing database
// connection or pool.
func NewStorageWithConnection(conn pgxIConn) *Storage {
	return &Storage{conn: conn}
}
