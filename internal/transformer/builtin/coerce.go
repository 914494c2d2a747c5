package builtin

import (
	"strings"

	"github.com/shopspring/decimal"

	"loanetl/internal/records"
	"loanetl/internal/typemap"
)

// Coerce converts values of DECIMAL columns into decimal.Decimal so the
// classifier and the sink work on exact numbers. Columns the map does not
// know, and non-decimal kinds, are left alone.
type Coerce struct {
	Types typemap.Map
}

func (c Coerce) Apply(in records.Batch) (records.Batch, error) {
	if c.Types.Len() == 0 {
		return in, nil
	}
	for j, col := range in.Columns {
		d, ok := c.Types.TypeFor(strings.ToLower(col))
		if !ok || d.Kind != typemap.KindDecimal {
			continue
		}
		for i := range in.Rows {
			r := &in.Rows[i]
			v, err := toDecimal(r.V[j])
			if err != nil {
				s, _ := r.V[j].(string)
				return in, &ParseError{Column: col, Line: r.Line, Value: s, Err: err}
			}
			r.V[j] = v
		}
	}
	return in, nil
}

// toDecimal returns nil for absent values, so callers keep NULL semantics.
func toDecimal(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		return decimal.NewFromString(s)
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	default:
		return v, nil
	}
}
