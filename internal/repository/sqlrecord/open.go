package sqlrecord

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to dsn with the named driver, pings it and migrates the schema.
func Open(ctx context.Context, driver, dsn string) (*Repo, error) {
	var (
		db  *sql.DB
		p   Placeholder
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(ctx, dsn)
		p = PlaceholderQuestion
	case DriverPostgres:
		db, err = openPostgres(dsn)
		p = PlaceholderDollar
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	r := New(db, p)
	if err := r.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer; also keeps a :memory: database alive on one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	return db, nil
}

func openPostgres(dsn string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	return stdlib.OpenDB(*cfg), nil
}
