package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/cbseprep/internal/kv"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection and provides access to repositories.
type Store struct {
	db *sql.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// KV returns the durable key-value store backed by this database.
func (s *Store) KV() kv.Store {
	return &sqliteKV{db: s.db}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db}
}

// UpdateRepo returns the repository of self-update attempts.
func (s *Store) UpdateRepo() UpdateRepo {
	return &updateRepo{db: s.db}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func createSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS query_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		subject TEXT NOT NULL,
		marks INTEGER NOT NULL,
		history_len INTEGER NOT NULL DEFAULT 0,
		question TEXT NOT NULL,
		latency_ms INTEGER NOT NULL,
		success INTEGER NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		source_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_query_events_subject ON query_events(subject, timestamp);

	CREATE TABLE IF NOT EXISTS update_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		from_version TEXT NOT NULL,
		to_version TEXT NOT NULL DEFAULT '',
		asset TEXT NOT NULL DEFAULT '',
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := db.Exec(query)
	return err
}

// DefaultDBPath resolves the database file path in priority order:
// 1. CBSEPREP_DB environment variable
// 2. $XDG_DATA_HOME/cbseprep/cbseprep.db
// 3. ~/.local/share/cbseprep/cbseprep.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("CBSEPREP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome, err := dataHome()
	if err != nil {
		return "", err
	}

	p := filepath.Join(dataHome, "cbseprep", "cbseprep.db")
	return p, EnsureDir(p)
}

// DefaultLogPath returns the rotating log file location next to the database.
func DefaultLogPath() (string, error) {
	dataHome, err := dataHome()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dataHome, "cbseprep", "cbseprep.log")
	return p, EnsureDir(p)
}

func dataHome() (string, error) {
	if dh := os.Getenv("XDG_DATA_HOME"); dh != "" {
		return dh, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
