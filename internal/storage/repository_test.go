package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"testing"

	"loanetl/internal/ddl"
	"loanetl/internal/typemap"
)

// fakeDialect renders '?' placeholders and passes normalized values through.
type fakeDialect struct{}

func (fakeDialect) Name() string                        { return "fake" }
func (fakeDialect) QuoteIdent(s string) string          { return `"` + s + `"` }
func (fakeDialect) QuoteTable(s string) string          { return ddl.QuoteFQN(s, fakeDialect{}.QuoteIdent) }
func (fakeDialect) Placeholder(int) string              { return "?" }
func (fakeDialect) MapType(d typemap.Descriptor) string { return d.String() }
func (fakeDialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	cols, err := ddl.RenderColumns("fake ddl", t, fakeDialect{}.QuoteIdent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.FQN, strings.Join(cols, ", ")), nil
}
func (fakeDialect) Bind(v any, d typemap.Descriptor) (any, error) { return Normalize(v, d) }

type copyCall struct {
	table   string
	columns []string
	rows    [][]any
}

// fakeRepo is a minimal Repository implementation for tests.
type fakeRepo struct {
	closed  bool
	execs   []string
	copies  []copyCall
	copyErr error
	execErr error
}

func (f *fakeRepo) CopyFrom(_ context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.copies = append(f.copies, copyCall{table: table, columns: columns, rows: rows})
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(_ context.Context, q string, _ ...any) (int64, error) {
	if f.execErr != nil {
		return 0, f.execErr
	}
	f.execs = append(f.execs, q)
	return 0, nil
}

func (f *fakeRepo) Dialect() Dialect { return fakeDialect{} }
func (f *fakeRepo) Close()           { f.closed = true }

// TestNewDispatchesByKind covers factory lookup, replacement and error
// propagation through New.
func TestNewDispatchesByKind(t *testing.T) {
	t.Parallel()

	errDown := errors.New("warehouse down")
	staging := &fakeRepo{}
	Register("loans-staging", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })
	Register("loans-staging", func(_ context.Context, cfg Config) (Repository, error) {
		if cfg.DSN != "stg" {
			return nil, fmt.Errorf("dsn %q", cfg.DSN)
		}
		return staging, nil
	})
	Register("loans-down", func(context.Context, Config) (Repository, error) { return nil, errDown })

	tests := []struct {
		name    string
		cfg     Config
		want    Repository
		wantErr string
		is      error
	}{
		{name: "replaced factory wins", cfg: Config{Kind: "loans-staging", DSN: "stg"}, want: staging},
		{name: "factory error bubbles", cfg: Config{Kind: "loans-down"}, is: errDown},
		{name: "unknown kind", cfg: Config{Kind: "parquet"}, wantErr: "unsupported storage.kind=parquet"},
		{name: "empty kind", cfg: Config{}, wantErr: "unsupported storage.kind="},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, err := New(context.Background(), tc.cfg)
			switch {
			case tc.is != nil:
				if !errors.Is(err, tc.is) {
					t.Fatalf("New error = %v, want %v", err, tc.is)
				}
			case tc.wantErr != "":
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("New error = %v, want %q", err, tc.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				if repo != tc.want {
					t.Fatalf("New returned %p, want the replacement repo", repo)
				}
			}
		})
	}
}

// TestListKindsSortedCopy checks registered kinds come back sorted and that
// callers cannot mutate the registry through the result.
func TestListKindsSortedCopy(t *testing.T) {
	t.Parallel()

	for _, k := range []string{"zz-archive", "aa-landing"} {
		Register(k, func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })
	}

	kinds := ListKinds()
	if !sort.StringsAreSorted(kinds) {
		t.Fatalf("ListKinds not sorted: %v", kinds)
	}
	for _, k := range []string{"zz-archive", "aa-landing"} {
		if !slices.Contains(kinds, k) {
			t.Fatalf("ListKinds missing %q: %v", k, kinds)
		}
	}
	kinds[0] = "mutated"
	if slices.Contains(ListKinds(), "mutated") {
		t.Fatalf("ListKinds shares its backing array with the registry")
	}
}
