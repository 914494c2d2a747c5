package oracle

import (
	"fmt"

	gddl "loanetl/internal/ddl"
	"loanetl/internal/storage"
	oraddl "loanetl/internal/storage/oracle/ddl"
	"loanetl/internal/typemap"
)

// Dialect renders Oracle SQL with upper-cased quoted identifiers and :n
// placeholders.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func (Dialect) Name() string                        { return "oracle" }
func (Dialect) QuoteIdent(s string) string          { return oraddl.QuoteIdent(s) }
func (Dialect) QuoteTable(s string) string          { return oraddl.QuoteFQN(s) }
func (Dialect) Placeholder(n int) string            { return fmt.Sprintf(":%d", n) }
func (Dialect) MapType(d typemap.Descriptor) string { return oraddl.MapType(d) }

func (Dialect) CreateTableSQL(t gddl.TableDef) (string, error) {
	return oraddl.BuildCreateTableSQL(t)
}

func (Dialect) Bind(v any, d typemap.Descriptor) (any, error) {
	nv, err := storage.Normalize(v, d)
	if err != nil {
		return nil, err
	}
	return storage.DecimalString(nv, d), nil
}
