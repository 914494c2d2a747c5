// Package ddl provides MySQL-specific helpers for generating DDL.
package ddl

import (
	"fmt"
	"strings"

	gddl "loanetl/internal/ddl"
	"loanetl/internal/typemap"
)

// MapType renders a descriptor as a MySQL column type:
//
//	DECIMAL(p,s) -> DECIMAL(p,s)
//	VARCHAR(n)   -> VARCHAR(n)
//	TIMESTAMP    -> DATETIME(6)
func MapType(d typemap.Descriptor) string {
	switch d.Kind {
	case typemap.KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", d.Precision, d.Scale)
	case typemap.KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", d.Length)
	case typemap.KindTimestamp:
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS with backtick
// quoting and a utf8mb4 default charset.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.RenderColumns("mysql ddl", t, QuoteIdent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n) DEFAULT CHARSET=utf8mb4;",
		QuoteFQN(t.FQN),
		strings.Join(cols, ",\n  "),
	), nil
}

// QuoteIdent wraps id in backticks, doubling embedded backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// QuoteFQN quotes db.table per segment.
func QuoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, QuoteIdent) }
