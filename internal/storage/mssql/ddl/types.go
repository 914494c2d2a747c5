// Package ddl contains MSSQL-specific helpers for generating DDL.
package ddl

import (
	"fmt"

	"loanetl/internal/typemap"
)

// MapType renders a column descriptor as a SQL Server type. Strings use
// NVARCHAR so non-ASCII employment titles survive.
//
//	DECIMAL(p,s) -> DECIMAL(p,s)
//	VARCHAR(n)   -> NVARCHAR(n)
//	TIMESTAMP    -> DATETIME2
func MapType(d typemap.Descriptor) string {
	switch d.Kind {
	case typemap.KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", d.Precision, d.Scale)
	case typemap.KindVarchar:
		if d.Length <= 0 || d.Length > 4000 {
			return "NVARCHAR(MAX)"
		}
		return fmt.Sprintf("NVARCHAR(%d)", d.Length)
	case typemap.KindTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}
