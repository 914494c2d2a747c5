package ddl

import (
	"fmt"
	"strings"

	gddl "loanetl/internal/ddl"
)

// BuildCreateTableSQL builds a Postgres CREATE TABLE IF NOT EXISTS statement.
// Identifiers are double-quoted with embedded quotes escaped.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.RenderColumns("postgres ddl", t, QuoteIdent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteFQN(t.FQN),
		strings.Join(cols, ",\n  "),
	), nil
}

// QuoteIdent quotes a single identifier segment: weird"name -> "weird""name".
func QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// QuoteFQN quotes a possibly schema-qualified name: public.loans -> "public"."loans".
func QuoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, QuoteIdent) }
