package sqlite

import (
	"time"

	gddl "loanetl/internal/ddl"
	"loanetl/internal/storage"
	sqddl "loanetl/internal/storage/sqlite/ddl"
	"loanetl/internal/typemap"
)

// Dialect renders SQLite SQL. Decimals bind as fixed-scale text and
// timestamps as RFC3339 text.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func (Dialect) Name() string                        { return "sqlite" }
func (Dialect) QuoteIdent(s string) string          { return sqddl.QuoteIdent(s) }
func (Dialect) QuoteTable(s string) string          { return sqddl.QuoteFQN(s) }
func (Dialect) Placeholder(int) string              { return "?" }
func (Dialect) MapType(d typemap.Descriptor) string { return sqddl.MapType(d) }

func (Dialect) CreateTableSQL(t gddl.TableDef) (string, error) {
	return sqddl.BuildCreateTableSQL(t)
}

func (Dialect) Bind(v any, d typemap.Descriptor) (any, error) {
	nv, err := storage.Normalize(v, d)
	if err != nil {
		return nil, err
	}
	if ts, ok := nv.(time.Time); ok {
		return ts.UTC().Format(time.RFC3339Nano), nil
	}
	return storage.DecimalString(nv, d), nil
}
