// Package database handles database connections and schema inspection.
//
// It wraps GORM and opens MySQL, PostgreSQL or SQLite connections from the
// application's configuration. The catalog's database backend uses it to hold
// catalog items and the revision row that guards concurrent writers.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns report what an existing table looks like,
// so a store can refuse to run against a schema that is missing columns it writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", zap.Error(err))
//	}
//
//	missing, err := database.MissingColumns(db, "catalog_items", []string{"id", "price"})
package database
