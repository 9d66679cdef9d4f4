// Package store runs compiled efql statements against SQLite.
//
// Local paths and file: URIs open through go-sqlite3; libsql:// and http(s)
// DSNs go to a remote libsql server. The store is schema-agnostic: the
// admin model renders its own DDL and ApplySchema installs it.
//
// # Database Configuration
//
// Local databases get:
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Child tables reference their main table rows
//
// # Row scanning
//
// ScanRows normalizes driver values so callers never see []byte and always
// get sql.NullTime for DATE, DATETIME and TIMESTAMP columns.
package store
