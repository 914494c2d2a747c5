package mysql

import (
	gddl "loanetl/internal/ddl"
	"loanetl/internal/storage"
	myddl "loanetl/internal/storage/mysql/ddl"
	"loanetl/internal/typemap"
)

// Dialect renders MySQL SQL. Decimals bind as fixed-scale strings.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func (Dialect) Name() string                        { return "mysql" }
func (Dialect) QuoteIdent(s string) string          { return myddl.QuoteIdent(s) }
func (Dialect) QuoteTable(s string) string          { return myddl.QuoteFQN(s) }
func (Dialect) Placeholder(int) string              { return "?" }
func (Dialect) MapType(d typemap.Descriptor) string { return myddl.MapType(d) }

func (Dialect) CreateTableSQL(t gddl.TableDef) (string, error) {
	return myddl.BuildCreateTableSQL(t)
}

func (Dialect) Bind(v any, d typemap.Descriptor) (any, error) {
	nv, err := storage.Normalize(v, d)
	if err != nil {
		return nil, err
	}
	return storage.DecimalString(nv, d), nil
}
