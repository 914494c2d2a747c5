package storage

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"loanetl/internal/typemap"
)

// BindError reports a value that does not fit its destination column.
type BindError struct {
	Column string
	Type   typemap.Descriptor
	Value  any
	Reason string
}

func (e *BindError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("bind %s: %s (value %v)", e.Type, e.Reason, e.Value)
	}
	return fmt.Sprintf("bind %s %s: %s (value %v)", e.Column, e.Type, e.Reason, e.Value)
}

// Normalize converts v to the canonical Go value for d:
//
//	DECIMAL   -> decimal.Decimal rounded to Scale; integer digits must fit
//	VARCHAR   -> string of at most Length characters
//	TIMESTAMP -> time.Time
//
// nil stays nil. Dialects call it before converting to driver values.
func Normalize(v any, d typemap.Descriptor) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch d.Kind {
	case typemap.KindDecimal:
		dec, err := asDecimal(v)
		if err != nil {
			return nil, &BindError{Type: d, Value: v, Reason: err.Error()}
		}
		dec = dec.Round(int32(d.Scale))
		if d.Precision > 0 && intDigits(dec) > d.Precision-d.Scale {
			return nil, &BindError{Type: d, Value: v, Reason: "numeric overflow"}
		}
		return dec, nil
	case typemap.KindVarchar:
		s := asString(v)
		if d.Length > 0 && utf8.RuneCountInString(s) > d.Length {
			return nil, &BindError{Type: d, Value: v, Reason: fmt.Sprintf("value longer than %d characters", d.Length)}
		}
		return s, nil
	case typemap.KindTimestamp:
		switch x := v.(type) {
		case time.Time:
			return x, nil
		case string:
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(x))
			if err != nil {
				return nil, &BindError{Type: d, Value: v, Reason: "not an RFC3339 timestamp"}
			}
			return t, nil
		default:
			return nil, &BindError{Type: d, Value: v, Reason: fmt.Sprintf("unsupported %T", v)}
		}
	default:
		return nil, &BindError{Type: d, Value: v, Reason: "unknown column kind"}
	}
}

// DecimalString renders a normalized value for drivers that take decimals as
// text; other values pass through.
func DecimalString(v any, d typemap.Descriptor) any {
	if dec, ok := v.(decimal.Decimal); ok {
		return dec.StringFixed(int32(d.Scale))
	}
	return v
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
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
		return decimal.Decimal{}, fmt.Errorf("unsupported %T", v)
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// intDigits counts digits left of the decimal point (0 for |d| < 1).
func intDigits(d decimal.Decimal) int {
	s := d.Abs().Truncate(0).String()
	if s == "0" {
		return 0
	}
	return len(s)
}
