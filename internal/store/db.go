package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql methods the task store uses.
// Both *sql.DB and *sql.Tx satisfy it, so the store does not care whether
// its queries run on a pooled connection or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
