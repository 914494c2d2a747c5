// Package quality partitions batches into accepted and rejected records.
//
// Rules are an ordered list of {column, predicate, reason}. A record is
// rejected by the first rule whose predicate matches; the reason is appended
// to the record as error_reason. Classification is pure: the input batch is
// not modified and no I/O happens here.
package quality

import (
	"strings"

	"github.com/shopspring/decimal"

	"loanetl/internal/records"
	"loanetl/internal/typemap"
)

// InvalidIncome is the reason attached by the default annual income rule.
const InvalidIncome = "Invalid Income"

// Rule rejects a record when Reject returns true for the value of Column.
// A column the batch does not carry is passed to Reject as nil.
type Rule struct {
	Column string
	Reason string
	Reject func(v any) bool
}

// Classifier applies Rules in order.
type Classifier struct {
	Rules []Rule
}

// Default returns the classifier with the single annual income rule.
func Default() Classifier {
	return Classifier{Rules: []Rule{
		{Column: "annual_inc", Reason: InvalidIncome, Reject: NotPositive},
	}}
}

// Classify splits b into accepted and rejected batches, preserving input
// order in both. The rejected batch carries b's columns plus error_reason.
func (c Classifier) Classify(b records.Batch) (accepted, rejected records.Batch) {
	idx := make([]int, len(c.Rules))
	for i, r := range c.Rules {
		idx[i] = b.Index(r.Column)
	}

	accepted = b.WithColumns(len(b.Rows))
	rejCols := make([]string, 0, len(b.Columns)+1)
	rejCols = append(rejCols, b.Columns...)
	rejCols = append(rejCols, typemap.ErrorReasonColumn)
	rejected = records.Batch{Columns: rejCols}

	for _, row := range b.Rows {
		reason, bad := c.match(row, idx)
		if !bad {
			accepted.Rows = append(accepted.Rows, row)
			continue
		}
		v := make([]any, 0, len(row.V)+1)
		v = append(v, row.V...)
		v = append(v, reason)
		rejected.Rows = append(rejected.Rows, records.Row{Line: row.Line, V: v})
	}
	return accepted, rejected
}

func (c Classifier) match(row records.Row, idx []int) (string, bool) {
	for i, r := range c.Rules {
		var v any
		if idx[i] >= 0 && idx[i] < len(row.V) {
			v = row.V[idx[i]]
		}
		if r.Reject(v) {
			return r.Reason, true
		}
	}
	return "", false
}

// NotPositive reports whether v is absent or not a number greater than zero.
// Text that does not parse as a number counts as absent.
func NotPositive(v any) bool {
	d, ok := asDecimal(v)
	if !ok {
		return true
	}
	return !d.IsPositive()
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

// Check kinds accepted in configuration.
const CheckPositive = "positive"

// Predicate returns the predicate for a configured check kind.
func Predicate(kind string) (func(any) bool, bool) {
	switch strings.ToLower(kind) {
	case CheckPositive:
		return NotPositive, true
	default:
		return nil, false
	}
}
