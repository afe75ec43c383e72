// Package all enables every built-in warehouse backend. Importing it for side
// effects registers the "postgres", "mssql", "sqlite" and "mysql" factories
// and DDL builders with the storage package:
//
//	import _ "retailetl/internal/storage/all"
package all

import (
	_ "retailetl/internal/storage/mssql"
	_ "retailetl/internal/storage/mysql"
	_ "retailetl/internal/storage/postgres"
	_ "retailetl/internal/storage/sqlite"
)
