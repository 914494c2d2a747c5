package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"loanetl/internal/storage"
	"loanetl/internal/typemap"
)

// TestStorageNewOpensFileDatabase goes through the registry with a real file
// DSN and loads a reject row with the audit-free sink.
func TestStorageNewOpensFileDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dsn := filepath.Join(t.TempDir(), "loans.db")
	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	if _, ok := repo.(*wrappedRepo); !ok {
		t.Fatalf("storage.New type = %T, want *wrappedRepo", repo)
	}
	if d := repo.Dialect(); d.Name() != "sqlite" || d.Placeholder(4) != "?" {
		t.Fatalf("dialect = %s placeholder %s", d.Name(), d.Placeholder(4))
	}

	types := typemap.Rejects(typemap.Loans())
	n, err := storage.NewSink(repo, true).Append(ctx, "err_loan_data", types,
		[]string{"id", "annual_inc", "error_reason"},
		[][]any{{"77", nil, "Invalid Income"}},
	)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if n != 1 {
		t.Fatalf("Append = %d, want 1", n)
	}
}

// TestStorageNewHookErrorAndClose drives the factory through the hook, once
// failing and once returning a repo whose close must run.
func TestStorageNewHookErrorAndClose(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	errLocked := errors.New("database is locked")
	newRepository = func(context.Context, Config) (*Repository, func(), error) {
		return nil, nil, errLocked
	}
	if _, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "busy.db"}); !errors.Is(err, errLocked) {
		t.Fatalf("storage.New error = %v, want %v", err, errLocked)
	}

	var gotDSN string
	closed := 0
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		gotDSN = cfg.DSN
		return &Repository{}, func() { closed++ }, nil
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "stg.db"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotDSN != "stg.db" {
		t.Fatalf("hook DSN = %q", gotDSN)
	}
	repo.Close()
	if closed != 1 {
		t.Fatalf("close calls = %d, want 1", closed)
	}
}
