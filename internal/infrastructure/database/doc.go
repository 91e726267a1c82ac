// Package database provides SQLite database connectivity for the Hearth gateway.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Connection pooling and lifecycle management
//   - Health checks
//
// Schema ownership lives with the store package: the snapshot store creates
// its own table on startup. There is no migration machinery because the
// persisted layout is a single key/document table.
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Store.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database
