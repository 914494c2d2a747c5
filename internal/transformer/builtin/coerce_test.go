package builtin

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"loanetl/internal/records"
	"loanetl/internal/typemap"
)

/*
TestCoerceApply_Basics verifies that Coerce converts DECIMAL columns from
text and Go numbers, keeps nil, and leaves VARCHAR columns untouched.
Column lookup ignores source casing.
*/
func TestCoerceApply_Basics(t *testing.T) {
	c := Coerce{Types: typemap.Loans()}
	in := records.Batch{
		Columns: []string{"ID", "Loan_Amnt", "annual_inc", "term"},
		Rows: []records.Row{
			{Line: 2, V: []any{"1", "1000.50", 55000, " 36 months"}},
			{Line: 3, V: []any{"2", "", nil, "60 months"}},
			{Line: 4, V: []any{"3", 2500.25, "-1", nil}},
		},
	}

	out, err := c.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	wantDec := func(v any, s string) {
		t.Helper()
		d, ok := v.(decimal.Decimal)
		if !ok || !d.Equal(decimal.RequireFromString(s)) {
			t.Fatalf("got %#v, want decimal %s", v, s)
		}
	}
	wantDec(out.Rows[0].V[1], "1000.50")
	wantDec(out.Rows[0].V[2], "55000")
	wantDec(out.Rows[2].V[1], "2500.25")
	wantDec(out.Rows[2].V[2], "-1")

	if out.Rows[1].V[1] != nil || out.Rows[1].V[2] != nil {
		t.Fatalf("absent values must stay nil: %#v", out.Rows[1].V)
	}
	if out.Rows[0].V[0] != "1" || out.Rows[0].V[3] != " 36 months" {
		t.Fatalf("varchar columns modified: %#v", out.Rows[0].V)
	}
}

// TestCoerceApply_ParseError verifies text in a numeric column is fatal.
func TestCoerceApply_ParseError(t *testing.T) {
	c := Coerce{Types: typemap.Loans()}
	in := records.Batch{
		Columns: []string{"loan_amnt"},
		Rows:    []records.Row{{Line: 7, V: []any{"ten"}}},
	}
	_, err := c.Apply(in)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Line != 7 || pe.Value != "ten" {
		t.Fatalf("ParseError = %+v", pe)
	}
}

func TestCoerceApply_EmptyMap(t *testing.T) {
	in := records.Batch{Columns: []string{"a"}, Rows: []records.Row{{V: []any{"x"}}}}
	out, err := Coerce{}.Apply(in)
	if err != nil || out.Rows[0].V[0] != "x" {
		t.Fatalf("Apply = %#v, %v", out.Rows[0].V, err)
	}
}
