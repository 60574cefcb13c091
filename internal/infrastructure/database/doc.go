// Package database provides SQLite connectivity and schema migrations for
// Gray Logic Studio.
//
// This package manages:
//   - Database connection with WAL mode and a busy timeout
//   - Versioned migrations read from any fs.FS (normally migrations.FS)
//   - Transaction helper and health checks
//
// The scene collection repository stores JSON snapshots in STRICT tables
// created by the migrations in the top-level migrations directory.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive: new columns are NULLABLE or have defaults, and
// every .up.sql file has a matching .down.sql.
package database
