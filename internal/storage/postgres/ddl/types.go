// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"fmt"

	"loanetl/internal/typemap"
)

// MapType renders a column descriptor as a Postgres type.
//
//	DECIMAL(p,s) -> NUMERIC(p,s)
//	VARCHAR(n)   -> VARCHAR(n)
//	TIMESTAMP    -> TIMESTAMPTZ
func MapType(d typemap.Descriptor) string {
	switch d.Kind {
	case typemap.KindDecimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", d.Precision, d.Scale)
	case typemap.KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", d.Length)
	case typemap.KindTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
