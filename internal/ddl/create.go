// Package ddl defines a small, backend-agnostic model for CREATE TABLE
// statements. Dialect packages (internal/storage/<kind>/ddl) render it with
// their own quoting and "if absent" guards; this package owns validation and
// the column list so every dialect fails the same way on bad input.
package ddl

import (
	"fmt"
	"strings"

	"loanetl/internal/typemap"
)

// RenderColumns validates t and renders each column definition plus an
// optional PRIMARY KEY clause, quoting identifiers with quote. prefix is used
// in error messages (e.g. "postgres ddl").
//
// A column is rendered as:
//
//	<quoted name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
// Primary-key columns are always NOT NULL.
func RenderColumns(prefix string, t TableDef, quote func(string) string) ([]string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return nil, fmt.Errorf("%s: table FQN must not be empty", prefix)
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("%s: at least one column is required", prefix)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%s: column with empty name in table %s", prefix, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return nil, fmt.Errorf("%s: column %s missing SQLType", prefix, name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return cols, nil
}

// QuoteFQN quotes each dot-separated segment of fqn with quote, dropping
// empty segments: "dbo.loans" -> [dbo].[loans].
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// FromTypeMap builds a nullable TableDef for columns (in the given order),
// rendering each descriptor with mapType. Every column must be mapped.
func FromTypeMap(table string, columns []string, types typemap.Map, mapType func(typemap.Descriptor) string) (TableDef, error) {
	td := TableDef{FQN: table, Columns: make([]ColumnDef, 0, len(columns))}
	for _, c := range columns {
		d, ok := types.TypeFor(c)
		if !ok {
			return TableDef{}, fmt.Errorf("ddl: column %q of %s has no type mapping", c, table)
		}
		td.Columns = append(td.Columns, ColumnDef{Name: c, SQLType: mapType(d), Nullable: true})
	}
	return td, nil
}
