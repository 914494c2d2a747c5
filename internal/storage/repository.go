// Package storage contains the storage-agnostic contracts used by the loan
// pipeline: the Repository each backend implements, the Dialect that renders
// backend SQL, and a Sink that binds typed batches and appends them.
//
// Backends register a factory at init time (see internal/storage/all) so the
// CLI can open a Repository from configuration alone.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"loanetl/internal/ddl"
	"loanetl/internal/typemap"
)

// Repository is an open connection to one relational store.
type Repository interface {
	// CopyFrom appends rows (aligned to columns) to table in one committed
	// unit and returns the number of rows written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Exec runs a single statement with positional args rendered by
	// Dialect().Placeholder and returns rows affected.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	Dialect() Dialect
	Close()
}

// Dialect renders backend-specific SQL and driver values.
type Dialect interface {
	Name() string
	QuoteIdent(name string) string
	QuoteTable(fqn string) string
	// Placeholder returns the n-th (1-based) bind marker: $1, @p1, :1, ?.
	Placeholder(n int) string
	MapType(d typemap.Descriptor) string
	// CreateTableSQL renders a create-if-absent statement.
	CreateTableSQL(t ddl.TableDef) (string, error)
	// Bind converts v to the driver value for a column of type d.
	Bind(v any, d typemap.Descriptor) (any, error)
}

// Config selects and configures a backend. It is passed explicitly to the
// factory; no backend keeps process-wide driver state.
type Config struct {
	Kind string
	DSN  string

	// BatchRows caps rows per INSERT statement (mysql) or per bulk-copy
	// batch (mssql). Zero means backend default.
	BatchRows int
}

// Factory opens a Repository.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
