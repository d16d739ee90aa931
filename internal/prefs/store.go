// Package prefs persists per-profile view preferences. The view-mode
// preference survives restarts; the selected date deliberately does not.
package prefs

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DefaultProfile is used when the caller does not distinguish users.
const DefaultProfile = "default"

// Store is a SQLite-backed preference store.
type Store struct {
	db  *sql.DB
	log *zerolog.Logger
}

// NewStore opens (and if needed creates) the preference database.
func NewStore(path string, log *zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create preferences directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open preferences database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect preferences database: %w", err)
	}

	store := &Store{db: db, log: log}
	if err := store.createTables(); err != nil {
		return nil, fmt.Errorf("create preference tables: %w", err)
	}

	if log != nil {
		log.Info().Str("path", path).Msg("preference store initialized")
	}
	return store, nil
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS view_preferences (
		profile TEXT PRIMARY KEY,
		view_mode TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`)
	return err
}

// GetViewMode returns the stored view mode for a profile, or the given
// fallback when the profile has no stored preference yet.
func (s *Store) GetViewMode(ctx context.Context, profile, fallback string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT view_mode FROM view_preferences WHERE profile = ?`, profile)

	var mode string
	if err := row.Scan(&mode); err != nil {
		if err == sql.ErrNoRows {
			return fallback, nil
		}
		return "", err
	}
	return mode, nil
}

// SetViewMode stores the view mode for a profile.
func (s *Store) SetViewMode(ctx context.Context, profile, mode string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO view_preferences (profile, view_mode, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			view_mode = excluded.view_mode,
			updated_at = excluded.updated_at`,
		profile, mode, time.Now())
	return err
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
