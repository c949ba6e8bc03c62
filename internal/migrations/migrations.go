// Package migrations applies the embedded schema with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const migrationsTable = "foodie_schema_migrations"

//go:embed sql/*.sql
var files embed.FS

// Up applies pending migrations to the postgres database at dsn.
// An up-to-date schema is not an error.
func Up(dsn string) error {
	databaseURL, err := driverURL(dsn)
	if err != nil {
		return fmt.Errorf("driverURL: %w", err)
	}

	src, err := iofs.New(files, "sql")
	if err != nil {
		return fmt.Errorf("iofs.New: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("migrate.NewWithSourceInstance: %w", err)
	}

	upErr := m.Up()
	if errors.Is(upErr, migrate.ErrNoChange) {
		upErr = nil
	}

	srcErr, dbErr := m.Close()

	return errors.Join(wrap("m.Up", upErr), wrap("source.Close", srcErr), wrap("database.Close", dbErr))
}

// driverURL rewrites a postgres:// DSN to the pgx5:// scheme the migrate driver registers.
func driverURL(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("url.Parse: %w", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql", "pgx5":
	default:
		return "", fmt.Errorf("scheme[%s] is not supported", u.Scheme)
	}
	u.Scheme = "pgx5"

	q := u.Query()
	q.Set("x-migrations-table", migrationsTable)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
