package repository

import (
	"context"
	"database/sql"

	sqlitedb "github.com/jmarquez/insurance-billing/internal/infrastructure/persistence/sqlite"
)

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// getExecutor returns the context transaction when present, else the database
func getExecutor(ctx context.Context, db *sql.DB) executor {
	if tx := sqlitedb.TxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
