package ddl

import (
	"strings"
	"testing"

	gddl "loanetl/internal/ddl"
	"loanetl/internal/typemap"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   typemap.Descriptor
		want string
	}{
		{typemap.Decimal(15, 2), "NUMERIC(15,2)"},
		{typemap.Decimal(18, 0), "NUMERIC(18,0)"},
		{typemap.Varchar(255), "VARCHAR(255)"},
		{typemap.Timestamp(), "TEXT"},
	}
	for _, tt := range tests {
		if got := MapType(tt.in); got != tt.want {
			t.Errorf("MapType(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoting(t *testing.T) {
	t.Parallel()

	if got := QuoteIdent(`err"loan`); got != `"err""loan"` {
		t.Fatalf("QuoteIdent = %s", got)
	}
	if got := QuoteFQN(" main..stg_loan_data "); got != `"main"."stg_loan_data"` {
		t.Fatalf("QuoteFQN = %s", got)
	}
	if got := QuoteFQN(""); got != "" {
		t.Fatalf("QuoteFQN(empty) = %s", got)
	}
}

// TestBuildCreateTableSQLRejectTable renders the reject table the sink
// creates on first append: loan columns in batch order, then error_reason.
func TestBuildCreateTableSQLRejectTable(t *testing.T) {
	t.Parallel()

	cols := []string{"id", "int_rate", "annual_inc", "error_reason"}
	def, err := gddl.FromTypeMap("err_loan_data", cols, typemap.Rejects(typemap.Loans()), MapType)
	if err != nil {
		t.Fatalf("FromTypeMap: %v", err)
	}

	got, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "" +
		`CREATE TABLE IF NOT EXISTS "err_loan_data" (` + "\n" +
		`  "id" VARCHAR(50),` + "\n" +
		`  "int_rate" NUMERIC(10,2),` + "\n" +
		`  "annual_inc" NUMERIC(15,2),` + "\n" +
		`  "error_reason" VARCHAR(255)` + "\n" +
		`);`
	if got != want {
		t.Fatalf("BuildCreateTableSQL =\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildCreateTableSQLConstraints(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN: "ETL_AUDIT_LOG",
		Columns: []gddl.ColumnDef{
			{Name: "JOB_NAME", SQLType: "VARCHAR(100)", PrimaryKey: true, Nullable: true},
			{Name: "STATUS", SQLType: "VARCHAR(20)", Default: `'RUNNING'`},
		},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	for _, frag := range []string{
		`"JOB_NAME" VARCHAR(100) NOT NULL`,
		`"STATUS" VARCHAR(20) NOT NULL DEFAULT 'RUNNING'`,
		`PRIMARY KEY ("JOB_NAME")`,
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %q in:\n%s", frag, got)
		}
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]gddl.TableDef{
		"blank table":  {FQN: "  ", Columns: []gddl.ColumnDef{{Name: "id", SQLType: "TEXT"}}},
		"no columns":   {FQN: "stg_loan_data"},
		"blank column": {FQN: "stg_loan_data", Columns: []gddl.ColumnDef{{Name: " ", SQLType: "TEXT"}}},
		"no type":      {FQN: "stg_loan_data", Columns: []gddl.ColumnDef{{Name: "id"}}},
	}
	for name, def := range tests {
		def := def
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			sql, err := BuildCreateTableSQL(def)
			if err == nil || !strings.HasPrefix(err.Error(), "sqlite ddl:") {
				t.Fatalf("error = %v, want sqlite ddl error", err)
			}
			if sql != "" {
				t.Fatalf("SQL = %q, want empty on error", sql)
			}
		})
	}
}

func BenchmarkBuildCreateTableSQLLoans(b *testing.B) {
	types := typemap.Rejects(typemap.Loans())
	def, err := gddl.FromTypeMap("err_loan_data", types.Columns(), types, MapType)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildCreateTableSQL(def); err != nil {
			b.Fatal(err)
		}
	}
}
