package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"loanetl/internal/typemap"
)

/*
TestNormalize_TableDriven covers descriptor-driven binding:

  - DECIMAL values round to scale and reject integer overflow.
  - VARCHAR values are stringified and length-checked in characters.
  - nil always binds as NULL.
*/
func TestNormalize_TableDriven(t *testing.T) {
	t.Parallel()

	d152 := typemap.Decimal(15, 2)
	d52 := typemap.Decimal(5, 2)
	v5 := typemap.Varchar(5)

	tests := []struct {
		name    string
		in      any
		d       typemap.Descriptor
		want    string
		wantNil bool
		wantErr bool
	}{
		{name: "nil", in: nil, d: d152, wantNil: true},
		{name: "decimal_round", in: decimal.RequireFromString("13.456"), d: d152, want: "13.46"},
		{name: "string_decimal", in: "1000", d: d152, want: "1000"},
		{name: "float", in: 13.5, d: d152, want: "13.5"},
		{name: "int", in: 42, d: d152, want: "42"},
		{name: "overflow", in: "1000.00", d: d52, wantErr: true},
		{name: "fits", in: "999.994", d: d52, want: "999.99"},
		{name: "rounds_into_overflow", in: "999.999", d: d52, wantErr: true},
		{name: "bad_text", in: "abc", d: d152, wantErr: true},
		{name: "varchar_ok", in: "CA", d: v5, want: "CA"},
		{name: "varchar_multibyte", in: "ñññññ", d: v5, want: "ñññññ"},
		{name: "varchar_too_long", in: "abcdef", d: v5, wantErr: true},
		{name: "varchar_from_decimal", in: decimal.RequireFromString("1.5"), d: v5, want: "1.5"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tc.in, tc.d)
			if tc.wantErr {
				var be *BindError
				if !errors.As(err, &be) {
					t.Fatalf("err = %v, want *BindError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if tc.wantNil {
				if got != nil {
					t.Fatalf("got %#v, want nil", got)
				}
				return
			}
			switch g := got.(type) {
			case decimal.Decimal:
				if !g.Equal(decimal.RequireFromString(tc.want)) {
					t.Fatalf("got %s, want %s", g, tc.want)
				}
			case string:
				if g != tc.want {
					t.Fatalf("got %q, want %q", g, tc.want)
				}
			default:
				t.Fatalf("unexpected type %T", got)
			}
		})
	}
}

func TestNormalize_Timestamp(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := Normalize(ts, typemap.Timestamp())
	if err != nil || !got.(time.Time).Equal(ts) {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := Normalize("2024-01-02T03:04:05Z", typemap.Timestamp()); err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if _, err := Normalize(5, typemap.Timestamp()); err == nil {
		t.Fatalf("expected error for int timestamp")
	}
}

func TestDecimalString(t *testing.T) {
	d := typemap.Decimal(10, 2)
	if got := DecimalString(decimal.RequireFromString("13.5"), d); got != "13.50" {
		t.Fatalf("got %v", got)
	}
	if got := DecimalString("x", d); got != "x" {
		t.Fatalf("non-decimal changed: %v", got)
	}
}
