package mssql

import (
	"fmt"

	gddl "loanetl/internal/ddl"
	"loanetl/internal/storage"
	msddl "loanetl/internal/storage/mssql/ddl"
	"loanetl/internal/typemap"
)

// Dialect renders SQL Server SQL. Decimals bind as fixed-scale strings, which
// the bulk copy path parses into DECIMAL without float rounding.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func (Dialect) Name() string                        { return "mssql" }
func (Dialect) QuoteIdent(s string) string          { return msddl.QuoteIdent(s) }
func (Dialect) QuoteTable(s string) string          { return msddl.QuoteFQN(s) }
func (Dialect) Placeholder(n int) string            { return fmt.Sprintf("@p%d", n) }
func (Dialect) MapType(d typemap.Descriptor) string { return msddl.MapType(d) }

func (Dialect) CreateTableSQL(t gddl.TableDef) (string, error) {
	return msddl.BuildCreateTableSQL(t)
}

func (Dialect) Bind(v any, d typemap.Descriptor) (any, error) {
	nv, err := storage.Normalize(v, d)
	if err != nil {
		return nil, err
	}
	return storage.DecimalString(nv, d), nil
}
