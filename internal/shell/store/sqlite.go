package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/artpar/stacksmith/internal/core/secrets"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore persists placeholder values in SQLite. SQLite's journal
// gives the same crash safety the file store gets from atomic rename.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens the database at dsn and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key secrets.Key) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		`SELECT value FROM placeholders WHERE scope = ? AND name = ?`,
		key.Scope, key.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, NewStoreError("Get", key.String(), err.Error(), err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key secrets.Key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO placeholders (scope, name, value) VALUES (?, ?, ?)
		 ON CONFLICT (scope, name) DO UPDATE SET value = excluded.value`,
		key.Scope, key.Name, value)
	if err != nil {
		return NewStoreError("Put", key.String(), err.Error(), ErrWriteFailed)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key secrets.Key) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM placeholders WHERE scope = ? AND name = ?`,
		key.Scope, key.Name)
	if err != nil {
		return NewStoreError("Delete", key.String(), err.Error(), ErrWriteFailed)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]secrets.Entry, error) {
	var entries []secrets.Entry
	err := s.db.SelectContext(ctx, &entries,
		`SELECT scope, name, value FROM placeholders ORDER BY scope, name`)
	if err != nil {
		return nil, NewStoreError("List", "", err.Error(), err)
	}
	return entries, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
