// Package typemap holds the destination column type descriptors used by the
// sink to render column definitions and to bind values without lossy or
// ambiguous coercion (e.g. binary float precision on money columns).
package typemap

import (
	"fmt"
	"sort"
)

// Kind is the logical destination type of a column.
type Kind string

const (
	KindDecimal   Kind = "DECIMAL"
	KindVarchar   Kind = "VARCHAR"
	KindTimestamp Kind = "TIMESTAMP"
)

// Descriptor is a precise destination type: DECIMAL(Precision, Scale),
// VARCHAR(Length) or TIMESTAMP.
type Descriptor struct {
	Kind      Kind
	Precision int
	Scale     int
	Length    int
}

// Decimal returns a DECIMAL(precision, scale) descriptor.
func Decimal(precision, scale int) Descriptor {
	return Descriptor{Kind: KindDecimal, Precision: precision, Scale: scale}
}

// Varchar returns a VARCHAR(length) descriptor.
func Varchar(length int) Descriptor {
	return Descriptor{Kind: KindVarchar, Length: length}
}

// Timestamp returns a TIMESTAMP descriptor.
func Timestamp() Descriptor { return Descriptor{Kind: KindTimestamp} }

// String renders the descriptor in its canonical form, e.g. "DECIMAL(15,2)".
func (d Descriptor) String() string {
	switch d.Kind {
	case KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", d.Precision, d.Scale)
	case KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", d.Length)
	default:
		return string(d.Kind)
	}
}

// Map is an immutable column name -> Descriptor mapping.
type Map struct {
	m map[string]Descriptor
}

// New returns a Map holding a copy of m.
func New(m map[string]Descriptor) Map {
	cp := make(map[string]Descriptor, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Map{m: cp}
}

// TypeFor returns the descriptor registered for column.
func (t Map) TypeFor(column string) (Descriptor, bool) {
	d, ok := t.m[column]
	return d, ok
}

// Extend returns a new Map with column added (or replaced). t is unchanged.
func (t Map) Extend(column string, d Descriptor) Map {
	cp := make(map[string]Descriptor, len(t.m)+1)
	for k, v := range t.m {
		cp[k] = v
	}
	cp[column] = d
	return Map{m: cp}
}

// Columns returns the mapped column names in sorted order.
func (t Map) Columns() []string {
	out := make([]string, 0, len(t.m))
	for k := range t.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of mapped columns.
func (t Map) Len() int { return len(t.m) }

// ErrorReasonColumn is the extra column carried by rejected records.
const ErrorReasonColumn = "error_reason"

// Loans returns the reference type map for the loan dataset.
func Loans() Map {
	return New(map[string]Descriptor{
		"id":          Varchar(50),
		"loan_amnt":   Decimal(15, 2),
		"term":        Varchar(20),
		"int_rate":    Decimal(10, 2),
		"grade":       Varchar(5),
		"emp_length":  Varchar(50),
		"annual_inc":  Decimal(15, 2),
		"loan_status": Varchar(50),
		"addr_state":  Varchar(5),
	})
}

// Rejects extends base with the error_reason column used by the reject table.
func Rejects(base Map) Map {
	return base.Extend(ErrorReasonColumn, Varchar(255))
}
