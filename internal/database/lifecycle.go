package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	_ "github.com/mattn/go-sqlite3"
)

// maintenanceDB is the database postgres connections are pointed at while
// creating or dropping the target.
const maintenanceDB = "postgres"

// Create creates the database named by rawURL. It reports false when the
// database already existed.
func Create(ctx context.Context, rawURL string) (bool, error) {
	target, err := ParseURL(rawURL)
	if err != nil {
		return false, err
	}

	switch target.Dialect {
	case DialectSQLite:
		return createSQLite(ctx, target)
	case DialectPostgres:
		return createPostgres(ctx, target)
	}
	return false, fmt.Errorf("%w: dialect %q", ErrUnsupportedURL, target.Dialect)
}

// Drop removes the database named by rawURL. It reports false when there
// was nothing to drop.
func Drop(ctx context.Context, rawURL string) (bool, error) {
	target, err := ParseURL(rawURL)
	if err != nil {
		return false, err
	}

	switch target.Dialect {
	case DialectSQLite:
		return dropSQLite(target)
	case DialectPostgres:
		return dropPostgres(ctx, target)
	}
	return false, fmt.Errorf("%w: dialect %q", ErrUnsupportedURL, target.Dialect)
}

func createSQLite(ctx context.Context, target Target) (bool, error) {
	if target.InMemory() {
		return false, nil
	}

	info, err := os.Stat(target.Path)
	switch {
	case err == nil && info.IsDir():
		return false, fmt.Errorf("database path is a directory, expected file: %s", target.Path)
	case err == nil:
		return false, nil
	case !os.IsNotExist(err):
		return false, fmt.Errorf("failed to check database file: %w", err)
	}

	if dir := filepath.Dir(target.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Opening a connection with the journal pragma writes the file header.
	db, err := sql.Open("sqlite3", target.DSN)
	if err != nil {
		return false, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return false, fmt.Errorf("failed to initialise database file: %w", err)
	}
	return true, nil
}

func dropSQLite(target Target) (bool, error) {
	if target.InMemory() {
		return false, nil
	}

	dropped := false
	for _, path := range []string{target.Path, target.Path + "-wal", target.Path + "-shm"} {
		err := os.Remove(path)
		switch {
		case err == nil:
			if path == target.Path {
				dropped = true
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return dropped, fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return dropped, nil
}

func connectMaintenance(ctx context.Context, target Target) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(target.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres url: %w", err)
	}
	cfg.Database = maintenanceDB

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", maintenanceDB, err)
	}
	return conn, nil
}

func postgresExists(ctx context.Context, conn *pgx.Conn, name string) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking for database %q: %w", name, err)
	}
	return exists, nil
}

func createPostgres(ctx context.Context, target Target) (bool, error) {
	conn, err := connectMaintenance(ctx, target)
	if err != nil {
		return false, err
	}
	defer conn.Close(ctx)

	exists, err := postgresExists(ctx, conn, target.Name)
	if err != nil || exists {
		return false, err
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{target.Name}.Sanitize()); err != nil {
		return false, fmt.Errorf("creating database %q: %w", target.Name, err)
	}
	return true, nil
}

func dropPostgres(ctx context.Context, target Target) (bool, error) {
	conn, err := connectMaintenance(ctx, target)
	if err != nil {
		return false, err
	}
	defer conn.Close(ctx)

	exists, err := postgresExists(ctx, conn, target.Name)
	if err != nil || !exists {
		return false, err
	}

	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{target.Name}.Sanitize()); err != nil {
		return false, fmt.Errorf("dropping database %q: %w", target.Name, err)
	}
	return true, nil
}
