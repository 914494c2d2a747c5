// Package mysql provides a MySQL-backed storage.Repository. MySQL has no
// client-side bulk API in go-sql-driver short of LOAD DATA LOCAL INFILE, so
// rows are written with multi-row INSERT statements, BatchRows at a time,
// inside one transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"loanetl/internal/storage"
	myddl "loanetl/internal/storage/mysql/ddl"
)

// DefaultBatchRows keeps statements well under the 65535 placeholder limit
// for tables of a few dozen columns.
const DefaultBatchRows = 1000

// Config holds MySQL repository configuration.
type Config struct {
	DSN       string
	BatchRows int
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db        *sql.DB
	batchRows int
}

// NewRepository validates the DSN, opens a pool and pings it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	// DATETIME columns round-trip as time.Time.
	mc.ParseTime = true
	if mc.Loc == nil {
		mc.Loc = time.UTC
	}

	conn, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(conn)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql ping: %w", err)
	}
	return newWithDB(db, cfg.BatchRows), func() { _ = db.Close() }, nil
}

func newWithDB(db *sql.DB, batchRows int) *Repository {
	if batchRows <= 0 {
		batchRows = DefaultBatchRows
	}
	return &Repository{db: db, batchRows: batchRows}
}

// CopyFrom inserts rows in BatchRows-sized multi-row INSERTs within a single
// transaction.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}

	n, err := storage.LoadBatches(ctx, columns, rows, r.batchRows, func(ctx context.Context, cols []string, chunk [][]any) (int64, error) {
		query, args := multiInsert(table, cols, chunk)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return n, nil
}

// Exec runs one statement with ? args.
func (r *Repository) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mysql: exec: %w", err)
	}
	return res.RowsAffected()
}

// multiInsert renders INSERT INTO t (a, b) VALUES (?, ?), (?, ?) and the
// flattened args.
func multiInsert(table string, columns []string, rows [][]any) (string, []any) {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", myddl.QuoteFQN(table), strings.Join(cols, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args
}
