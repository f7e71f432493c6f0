// Package data implements the repositories over database/sql with embedded
// migrations. Queries are written with ? placeholders and rebound for
// postgres; sqlite3 is the default driver.
package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// DB wraps the sql handle with its driver name so queries can be rebound.
type DB struct {
	*sql.DB
	driver string
}

// Open connects to the database. driver is "sqlite3" or "postgres".
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	handle, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := handle.Ping(); err != nil {
		handle.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		// sqlite serializes writers; a single connection avoids busy errors
		handle.SetMaxOpenConns(1)
	}
	return &DB{DB: handle, driver: driver}, nil
}

// Migrate applies the embedded migrations for the active driver.
func (db *DB) Migrate() error {
	src, err := iofs.New(migrationsFS, "migrations/"+db.driver)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	var drv database.Driver
	switch db.driver {
	case "postgres":
		drv, err = migratepg.WithInstance(db.DB, &migratepg.Config{})
	default:
		drv, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.driver, drv)
	if err != nil {
		return fmt.Errorf("build migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (db *DB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// isUniqueViolation reports whether err is a unique-constraint failure on
// either driver.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}
