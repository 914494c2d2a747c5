// Package probe samples the head of a loan file and suggests destination
// column types. The suggestion is written in the same shape as the "types"
// configuration block, so a probe result can be reviewed and then fed back
// into a run.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/zeebo/xxh3"

	"loanetl/internal/records"
	"loanetl/internal/typemap"
)

// DefaultRows is the sample size used when Options.Rows is zero.
const DefaultRows = 1000

// maxPrecision is the widest DECIMAL every supported backend accepts.
const maxPrecision = 38

// Reader yields at most n records per call and io.EOF at end of input.
type Reader interface {
	Next(ctx context.Context, n int) (records.Batch, error)
}

// Options control sampling.
type Options struct {
	// Rows is the number of records to sample.
	Rows int
}

// Column describes one sampled column.
type Column struct {
	Name string `json:"name"`
	// Type is the suggested destination type.
	Type typemap.Descriptor `json:"-"`
	// SQLType is Type in configuration syntax, e.g. "DECIMAL(10,2)".
	SQLType string `json:"type"`

	Nulls    int `json:"nulls"`
	Distinct int `json:"distinct"`
	// Duplicates counts non-empty values already seen earlier in the sample.
	Duplicates int `json:"duplicates"`
	// Percent is set when every non-empty value ended in "%".
	Percent bool `json:"percent,omitempty"`
	MaxLen  int  `json:"max_len"`
}

// Report is the result of one probe.
type Report struct {
	Rows    int      `json:"rows"`
	Columns []Column `json:"columns"`
}

// Sample reads one batch of up to opt.Rows records from r and infers a type
// per column. An empty input yields a report with no rows.
func Sample(ctx context.Context, r Reader, opt Options) (Report, error) {
	n := opt.Rows
	if n <= 0 {
		n = DefaultRows
	}
	b, err := r.Next(ctx, n)
	if err != nil && !errors.Is(err, io.EOF) {
		return Report{}, fmt.Errorf("probe: read sample: %w", err)
	}

	rep := Report{Rows: b.Len(), Columns: make([]Column, len(b.Columns))}
	for j, name := range b.Columns {
		vals := make([]string, 0, b.Len())
		nulls := 0
		for _, row := range b.Rows {
			s, _ := row.V[j].(string)
			s = strings.TrimSpace(s)
			if s == "" {
				nulls++
				continue
			}
			vals = append(vals, s)
		}
		col := inferColumn(strings.ToLower(name), vals)
		col.Nulls = nulls
		rep.Columns[j] = col
	}
	return rep, nil
}

func inferColumn(name string, vals []string) Column {
	col := Column{Name: name}

	seen := make(map[uint64]struct{}, len(vals))
	for _, v := range vals {
		h := xxh3.HashString(v)
		if _, dup := seen[h]; dup {
			col.Duplicates++
		} else {
			seen[h] = struct{}{}
		}
		col.MaxLen = max(col.MaxLen, utf8.RuneCountInString(v))
	}
	col.Distinct = len(seen)

	switch {
	case len(vals) == 0:
		col.Type = typemap.Varchar(255)
	case allMatch(vals, isPercent):
		col.Percent = true
		col.Type = decimalType(stripPercent(vals))
	case allMatch(vals, isDecimal):
		col.Type = decimalType(vals)
	case allMatch(vals, isTimestamp):
		col.Type = typemap.Timestamp()
	default:
		col.Type = typemap.Varchar(roundUp(col.MaxLen, 10))
	}
	col.SQLType = col.Type.String()
	return col
}

// decimalType sizes a DECIMAL that holds every value in vals with headroom
// for larger files. Values too wide for any backend fall back to VARCHAR.
func decimalType(vals []string) typemap.Descriptor {
	intDigits, scale := 1, 0
	for _, v := range vals {
		d, err := decimal.NewFromString(v)
		if err != nil {
			continue
		}
		digits := len(d.Abs().Coefficient().String())
		exp := int(d.Exponent())
		if exp < 0 {
			scale = max(scale, -exp)
		}
		intDigits = max(intDigits, digits+exp)
	}
	p := roundUp(intDigits+scale, 5)
	p = max(p, 10)
	if p > maxPrecision {
		if intDigits+scale > maxPrecision {
			return typemap.Varchar(255)
		}
		p = maxPrecision
	}
	return typemap.Decimal(p, scale)
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isDecimal(s string) bool {
	_, err := decimal.NewFromString(s)
	return err == nil
}

func isPercent(s string) bool {
	return strings.HasSuffix(s, "%") && isDecimal(strings.TrimSpace(strings.TrimSuffix(s, "%")))
}

func stripPercent(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strings.TrimSpace(strings.TrimSuffix(v, "%"))
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func isTimestamp(s string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func roundUp(n, m int) int {
	if n <= 0 {
		return m
	}
	return (n + m - 1) / m * m
}

// Types returns the suggested types keyed by column, in the shape of the
// "types" configuration block.
func (r Report) Types() map[string]string {
	out := make(map[string]string, len(r.Columns))
	for _, c := range r.Columns {
		out[c.Name] = c.SQLType
	}
	return out
}

// WriteTable prints a human-readable summary.
func (r Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "COLUMN\tTYPE\tNULLS\tDISTINCT\tDUPLICATES\tMAX_LEN\n")
	for _, c := range r.Columns {
		typ := c.SQLType
		if c.Percent {
			typ += " (percent)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", c.Name, typ, c.Nulls, c.Distinct, c.Duplicates, c.MaxLen)
	}
	fmt.Fprintf(tw, "\nsampled %d rows\n", r.Rows)
	return tw.Flush()
}

// WriteConfig prints {"types": {...}} as indented JSON, loadable as a
// configuration file.
func (r Report) WriteConfig(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"types": r.Types()})
}
