// Package migrations versions the HRMS schema with goose. Migrations are
// registered as Go functions so the table set always follows the catalog.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

const TableName = "schema_migrations"

const (
	versionUsers   int64 = 1
	versionCatalog int64 = 2
)

const usersTablePostgres = `CREATE TABLE IF NOT EXISTS "users" (
	"id" TEXT PRIMARY KEY,
	"email" TEXT NOT NULL UNIQUE,
	"full_name" TEXT NOT NULL DEFAULT '',
	"password_hash" TEXT NOT NULL,
	"created_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	"updated_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const usersTableSQLite = `CREATE TABLE IF NOT EXISTS "users" (
	"id" TEXT PRIMARY KEY,
	"email" TEXT NOT NULL UNIQUE COLLATE NOCASE,
	"full_name" TEXT NOT NULL DEFAULT '',
	"password_hash" TEXT NOT NULL,
	"created_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	"updated_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// NewProvider builds a goose provider for the dialect with every schema
// migration registered.
func NewProvider(db *sql.DB, dialect catalog.Dialect) (*goose.Provider, error) {
	var storeDialect database.Dialect
	switch dialect {
	case catalog.Postgres:
		storeDialect = database.DialectPostgres
	case catalog.SQLite:
		storeDialect = database.DialectSQLite3
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	store, err := database.NewStore(storeDialect, TableName)
	if err != nil {
		return nil, fmt.Errorf("goose store: %w", err)
	}

	migrations, err := Migrations(dialect)
	if err != nil {
		return nil, err
	}

	return goose.NewProvider("", db, nil,
		goose.WithStore(store),
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(migrations...),
	)
}

// Migrations returns the ordered schema migrations for the dialect.
func Migrations(dialect catalog.Dialect) ([]*goose.Migration, error) {
	users := usersTablePostgres
	if dialect == catalog.SQLite {
		users = usersTableSQLite
	}

	create, err := catalog.SchemaSQL(dialect)
	if err != nil {
		return nil, fmt.Errorf("render schema: %w", err)
	}
	tables, err := catalog.Tables()
	if err != nil {
		return nil, err
	}
	drop := make([]string, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		drop = append(drop, tables[i].DropSQL())
	}

	return []*goose.Migration{
		goose.NewGoMigration(versionUsers,
			&goose.GoFunc{RunTx: exec(users)},
			&goose.GoFunc{RunTx: exec(`DROP TABLE IF EXISTS "users"`)},
		),
		goose.NewGoMigration(versionCatalog,
			&goose.GoFunc{RunTx: exec(create...)},
			&goose.GoFunc{RunTx: exec(drop...)},
		),
	}, nil
}

func exec(stmts ...string) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%w\n%s", err, stmt)
			}
		}
		return nil
	}
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, dialect catalog.Dialect) ([]*goose.MigrationResult, error) {
	p, err := NewProvider(db, dialect)
	if err != nil {
		return nil, err
	}
	return p.Up(ctx)
}
