package ddl

import (
	"strings"
	"testing"

	gddl "loanetl/internal/ddl"
	"loanetl/internal/typemap"
)

// TestQuoteIdent verifies bracket quoting and escaping.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"simple", "[simple]"},
		{"brack]et", "[brack]]et]"},
		{`weird]]name`, `[weird]]]]name]`},
	}
	for _, tc := range cases {
		if got := QuoteIdent(tc.in); got != tc.want {
			t.Fatalf("QuoteIdent(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

// TestQuoteFQN verifies schema-qualified names are quoted per segment.
func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"dbo.Users", "[dbo].[Users]"},
		{"Users", "[Users]"},
		{"a.b.c", "[a].[b].[c]"},
	}
	for _, tc := range cases {
		if got := QuoteFQN(tc.in); got != tc.want {
			t.Fatalf("QuoteFQN(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

// TestBuildCreateTableSQLBasic verifies the OBJECT_ID guard and column list.
func TestBuildCreateTableSQLBasic(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN: "dbo.err_loan_data",
		Columns: []gddl.ColumnDef{
			{Name: "id", SQLType: MapType(typemap.Varchar(50)), Nullable: true},
			{Name: "error_reason", SQLType: MapType(typemap.Varchar(255)), Nullable: true},
		},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "IF OBJECT_ID(N'[dbo].[err_loan_data]', N'U') IS NULL\nBEGIN\n" +
		"  CREATE TABLE [dbo].[err_loan_data] (\n" +
		"    [id] NVARCHAR(50),\n" +
		"    [error_reason] NVARCHAR(255)\n" +
		"  );\nEND;"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	_, err := BuildCreateTableSQL(gddl.TableDef{FQN: "t"})
	if err == nil || !strings.HasPrefix(err.Error(), "mssql ddl:") {
		t.Fatalf("err = %v", err)
	}
}
