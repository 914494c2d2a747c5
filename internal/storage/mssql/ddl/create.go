// Package ddl provides MSSQL-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses SQL Server-style identifier quoting: [schema].[table], [col].
//   - Wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL guard since T-SQL
//     does not support CREATE TABLE IF NOT EXISTS.
package ddl

import (
	"fmt"
	"strings"

	gddl "loanetl/internal/ddl"
)

// BuildCreateTableSQL returns a T-SQL script that creates the table if it
// does not already exist:
//
//	IF OBJECT_ID(N'[dbo].[loans]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [dbo].[loans] (
//	    [col1] TYPE,
//	    ...
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.RenderColumns("mssql ddl", t, QuoteIdent)
	if err != nil {
		return "", err
	}
	fqn := QuoteFQN(t.FQN)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(fqn, "'", "''"),
		fqn,
		strings.Join(cols, ",\n    "),
	), nil
}

// QuoteIdent quotes a single identifier with brackets, escaping ]:
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN quotes a possibly schema-qualified table name: dbo.Users -> [dbo].[Users].
func QuoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, QuoteIdent) }
