package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

const kvTable = "kv_store"

const kvSchemaSQLite = `CREATE TABLE IF NOT EXISTS kv_store (
	"key"      TEXT PRIMARY KEY,
	"value"    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

const kvSchemaPostgres = `CREATE TABLE IF NOT EXISTS kv_store (
	"key"      TEXT PRIMARY KEY,
	"value"    TEXT NOT NULL,
	updated_at BIGINT NOT NULL
)`

// Migrate creates the key-value table when missing.
func Migrate(ctx context.Context, db *DB) error {
	ddl := kvSchemaSQLite
	if db.Dialect == dialect.Postgres {
		ddl = kvSchemaPostgres
	}
	if _, err := db.SQL().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", kvTable, err)
	}
	return nil
}
