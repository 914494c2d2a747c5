// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. Each append is one bulk copy in one transaction,
// so a failed chunk leaves no partial rows in the staging tables.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string

	// RowsPerBatch is passed to the server as a bulk-load hint. Zero lets
	// the server decide.
	RowsPerBatch int

	// Tablock takes a table lock for the duration of each bulk copy, which
	// enables minimally logged inserts into heap staging tables.
	Tablock bool
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db   *sql.DB
	bulk mssql.BulkOptions
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: ping: %w", err)
	}
	r := &Repository{db: db, bulk: mssql.BulkOptions{
		RowsPerBatch: cfg.RowsPerBatch,
		Tablock:      cfg.Tablock,
	}}
	return r, func() { _ = db.Close() }, nil
}

// CopyFrom bulk-inserts rows into table inside a transaction.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, r.bulk, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: prepare bulk %s: %w", table, err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx) // flush
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// Exec runs one statement with @pN args.
func (r *Repository) Exec(ctx context.Context, sqlText string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
