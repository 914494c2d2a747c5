package builtin

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"loanetl/internal/records"
)

var errBarePercent = errors.New("no digits before %")

// Percent normalizes a percentage-formatted column ("13.5%") into a decimal.
// Only string values are touched; numbers and nil pass through, so applying
// it twice is the same as applying it once.
type Percent struct {
	Column string
}

func (p Percent) Apply(in records.Batch) (records.Batch, error) {
	idx := in.Index(p.Column)
	if idx < 0 {
		return in, nil
	}
	for i := range in.Rows {
		r := &in.Rows[i]
		s, ok := r.V[idx].(string)
		if !ok {
			continue
		}
		raw := strings.TrimSpace(s)
		s = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
		if raw == "" {
			r.V[idx] = nil
			continue
		}
		if s == "" {
			return in, &ParseError{Column: p.Column, Line: r.Line, Value: r.V[idx].(string), Err: errBarePercent}
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return in, &ParseError{Column: p.Column, Line: r.Line, Value: r.V[idx].(string), Err: err}
		}
		r.V[idx] = d
	}
	return in, nil
}
