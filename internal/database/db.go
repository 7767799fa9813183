// Package database provides the SQLite connection used for the quote cache.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the cache database connection.
type DB struct {
	conn *sql.DB
	path string
	name string // Friendly name for logging
}

// Config holds database configuration.
type Config struct {
	Path string
	Name string
}

// New opens the cache database, creating its directory if needed. The
// connection is tuned for ephemeral data: no fsync, temp tables in memory,
// auto-reclaimed space.
func New(cfg Config) (*DB, error) {
	if strings.HasPrefix(cfg.Path, "file:") {
		// file: URIs (in-memory databases in tests) are used as-is.
	} else {
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		cfg.Path = absPath
	}

	conn, err := sql.Open("sqlite", buildConnectionString(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{conn: conn, path: cfg.Path, name: cfg.Name}, nil
}

// buildConnectionString creates the SQLite connection string with cache PRAGMAs.
func buildConnectionString(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	connStr := path + sep + "_pragma=journal_mode(WAL)"
	connStr += "&_pragma=synchronous(OFF)"   // No fsync (it's cache!)
	connStr += "&_pragma=auto_vacuum(FULL)"  // Auto-reclaim space
	connStr += "&_pragma=temp_store(MEMORY)" // Temp tables in RAM
	connStr += "&_pragma=wal_autocheckpoint(1000)"
	connStr += "&_pragma=cache_size(-64000)" // 64MB cache (negative = KB)
	return connStr
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the friendly database name.
func (db *DB) Name() string {
	return db.name
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the database is reachable.
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database %s ping failed: %w", db.name, err)
	}
	var result int
	if err := db.conn.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database %s query failed: %w", db.name, err)
	}
	return nil
}
