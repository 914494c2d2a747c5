// Package ddl contains SQLite-specific helpers for generating DDL.
package ddl

import (
	"fmt"

	"loanetl/internal/typemap"
)

// MapType renders a descriptor as a SQLite column type. SQLite only enforces
// affinities, but the declared precision is kept so the schema documents the
// destination contract:
//
//	DECIMAL(p,s) -> NUMERIC(p,s)
//	VARCHAR(n)   -> VARCHAR(n)   (TEXT affinity)
//	TIMESTAMP    -> TEXT         (ISO-8601)
func MapType(d typemap.Descriptor) string {
	switch d.Kind {
	case typemap.KindDecimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", d.Precision, d.Scale)
	case typemap.KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", d.Length)
	default:
		return "TEXT"
	}
}
