// Package sqlite implementa el adapter SQLite del store con modernc.org/sqlite
// (sin cgo). Es el driver por defecto en desarrollo y en tests.
//
// DSN: path del archivo, o ":memory:" (una sola conexión).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/dropDatabas3/johngate/internal/store"
	"github.com/dropDatabas3/johngate/migrations/sqlite"
)

func init() {
	store.RegisterAdapter(&sqliteAdapter{})
}

const pragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string      { return "sqlite" }
func (a *sqliteAdapter) Aliases() []string { return []string{"sqlite3"} }

func (a *sqliteAdapter) Connect(ctx context.Context, cfg store.Config) (store.Store, error) {
	path := strings.TrimSpace(cfg.DSN)
	if path == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}

	var dsn string
	memory := path == ":memory:"
	if memory {
		dsn = ":memory:?" + pragmas
	} else {
		dsn = filepath.Clean(path) + "?" + pragmas
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if memory {
		// cada conexión a :memory: es una base distinta
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return &Store{db: db}, nil
}

// Store implementa store.Store sobre database/sql.
type Store struct{ db *sql.DB }

func (s *Store) Driver() string { return "sqlite" }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate aplica cada archivo embebido una sola vez.
func (s *Store) Migrate(ctx context.Context) error {
	ms, err := store.LoadMigrations(sqlite.FS, ".")
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`); err != nil {
		return fmt.Errorf("sqlite: ensure migration table: %w", err)
	}
	for _, m := range ms {
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, m store.Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, m.Name,
	).Scan(&n); err != nil {
		return fmt.Errorf("sqlite: check migration %s: %w", m.Name, err)
	}
	if n > 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return fmt.Errorf("sqlite: exec migration %s: %w", m.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`,
		m.Name, toMillis(time.Now()),
	); err != nil {
		return fmt.Errorf("sqlite: record migration %s: %w", m.Name, err)
	}
	return tx.Commit()
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
