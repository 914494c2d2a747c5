// Package ddl provides Oracle-specific helpers for generating DDL.
//
// Oracle folds unquoted identifiers to upper case, so identifiers are
// upper-cased before quoting; "stg_loan_data" and STG_LOAN_DATA then name the
// same table whether written by this package or by hand.
package ddl

import (
	"fmt"
	"strings"

	gddl "loanetl/internal/ddl"
	"loanetl/internal/typemap"
)

// ErrNameAlreadyUsed is ORA-00955, raised by CREATE TABLE on an existing name.
const ErrNameAlreadyUsed = -955

// MapType renders a descriptor as an Oracle type:
//
//	DECIMAL(p,s) -> NUMBER(p,s)
//	VARCHAR(n)   -> VARCHAR2(n CHAR)
//	TIMESTAMP    -> TIMESTAMP
func MapType(d typemap.Descriptor) string {
	switch d.Kind {
	case typemap.KindDecimal:
		return fmt.Sprintf("NUMBER(%d,%d)", d.Precision, d.Scale)
	case typemap.KindVarchar:
		return fmt.Sprintf("VARCHAR2(%d CHAR)", d.Length)
	case typemap.KindTimestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR2(4000 CHAR)"
	}
}

// BuildCreateTableSQL wraps CREATE TABLE in a PL/SQL block that swallows
// ORA-00955, giving create-if-absent semantics on releases without
// CREATE TABLE IF NOT EXISTS.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.RenderColumns("oracle ddl", t, QuoteIdent)
	if err != nil {
		return "", err
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteFQN(t.FQN), strings.Join(cols, ", "))
	return fmt.Sprintf(
		"BEGIN\n  EXECUTE IMMEDIATE '%s';\nEXCEPTION\n  WHEN OTHERS THEN\n    IF SQLCODE != %d THEN\n      RAISE;\n    END IF;\nEND;",
		strings.ReplaceAll(create, "'", "''"),
		ErrNameAlreadyUsed,
	), nil
}

// QuoteIdent upper-cases and double-quotes id.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(strings.ToUpper(id), `"`, `""`) + `"`
}

// QuoteFQN quotes schema.table per segment.
func QuoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, QuoteIdent) }
