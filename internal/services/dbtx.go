// Package services provides business logic for the reporting backend.
package services

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by query helpers, satisfied by
// both *sql.DB and *sql.Tx so the same code runs inside or outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
