package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	gddl "loanetl/internal/ddl"
	"loanetl/internal/storage"
	pgddl "loanetl/internal/storage/postgres/ddl"
	"loanetl/internal/typemap"
)

// Dialect renders Postgres SQL. Decimals bind as pgtype.Numeric so COPY
// writes exact values.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func (Dialect) Name() string                                   { return "postgres" }
func (Dialect) QuoteIdent(s string) string                     { return pgddl.QuoteIdent(s) }
func (Dialect) QuoteTable(s string) string                     { return pgddl.QuoteFQN(s) }
func (Dialect) Placeholder(n int) string                       { return fmt.Sprintf("$%d", n) }
func (Dialect) MapType(d typemap.Descriptor) string            { return pgddl.MapType(d) }
func (Dialect) CreateTableSQL(t gddl.TableDef) (string, error) { return pgddl.BuildCreateTableSQL(t) }

func (Dialect) Bind(v any, d typemap.Descriptor) (any, error) {
	nv, err := storage.Normalize(v, d)
	if err != nil {
		return nil, err
	}
	if dec, ok := nv.(decimal.Decimal); ok {
		return pgtype.Numeric{Int: dec.Coefficient(), Exp: dec.Exponent(), Valid: true}, nil
	}
	return nv, nil
}
