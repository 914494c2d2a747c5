// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories with the storage package. Afterwards the following kinds
// are available to storage.New:
//
//   - "postgres" (loanetl/internal/storage/postgres)
//   - "mssql"    (loanetl/internal/storage/mssql)
//   - "sqlite"   (loanetl/internal/storage/sqlite)
//   - "mysql"    (loanetl/internal/storage/mysql)
//   - "oracle"   (loanetl/internal/storage/oracle)
//
// Typical usage:
//
//	import _ "loanetl/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
//
// A binary that needs only a subset of backends can import those packages
// directly instead.
package all

import (
	_ "loanetl/internal/storage/mssql"
	_ "loanetl/internal/storage/mysql"
	_ "loanetl/internal/storage/oracle"
	_ "loanetl/internal/storage/postgres"
	_ "loanetl/internal/storage/sqlite"
)
