package ddl

import (
	"strings"
	"testing"

	gddl "loanetl/internal/ddl"
)

// TestQuoteIdent verifies Postgres identifier quoting and escaping.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "name", want: `"name"`},
		{name: "empty", in: "", want: `""`},
		{name: "with space", in: "user name", want: `"user name"`},
		{name: "with double quote", in: `weird"name`, want: `"weird""name"`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := QuoteIdent(tt.in); got != tt.want {
				t.Fatalf("QuoteIdent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestBuildCreateTableSQL verifies the rendered statement and error prefix.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN: "public.stg_loan_data",
		Columns: []gddl.ColumnDef{
			{Name: "id", SQLType: "VARCHAR(50)", Nullable: true},
			{Name: "annual_inc", SQLType: "NUMERIC(15,2)", Nullable: true},
		},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"public\".\"stg_loan_data\" (\n" +
		"  \"id\" VARCHAR(50),\n" +
		"  \"annual_inc\" NUMERIC(15,2)\n" +
		");"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	_, err = BuildCreateTableSQL(gddl.TableDef{})
	if err == nil || !strings.HasPrefix(err.Error(), "postgres ddl:") {
		t.Fatalf("err = %v", err)
	}
}
