// Package records defines the in-memory shape of loan data as it moves from
// the CSV reader through cleaning, classification and loading.
//
// A Batch is column-oriented metadata (ordered names) plus positional rows,
// which keeps rows cheap to hand to bulk-load APIs such as pgx CopyFromRows
// without re-keying every value.
package records

import "strings"

// Row is one record: values aligned to the owning Batch's Columns.
// Line is the 1-based source line (header is line 1), used for diagnostics.
type Row struct {
	Line int
	V    []any
}

// Batch is an ordered, bounded slice of rows read in one pull from a source.
type Batch struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows in the batch.
func (b Batch) Len() int { return len(b.Rows) }

// Empty reports whether the batch has no rows.
func (b Batch) Empty() bool { return len(b.Rows) == 0 }

// Index returns the position of column name, compared case-insensitively, or
// -1 if the batch does not carry it.
func (b Batch) Index(name string) int {
	for i, c := range b.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// LowerColumns returns a copy of the column names in lower case.
func (b Batch) LowerColumns() []string {
	out := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		out[i] = strings.ToLower(c)
	}
	return out
}

// Values returns the row values in order, sharing the underlying slices.
func (b Batch) Values() [][]any {
	out := make([][]any, len(b.Rows))
	for i, r := range b.Rows {
		out[i] = r.V
	}
	return out
}

// WithColumns returns an empty batch that shares b's column list, sized for
// up to n rows.
func (b Batch) WithColumns(n int) Batch {
	return Batch{Columns: b.Columns, Rows: make([]Row, 0, n)}
}
