// Package database persists premises, bedspaces, bookings and voids in SQLite
// and serves the per-bedspace reads the report service needs.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidData = errors.New("invalid stored data")
)

// DB wraps the SQLite connection.
type DB struct {
	*sql.DB
	path    string
	builder sq.StatementBuilderType
	logger  *zerolog.Logger
}

// NewDB opens the database at path and creates tables if they don't exist.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := Wrap(sqlDB, logger)
	db.path = path
	if err := db.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	db.logger.Info().Str("path", path).Msg("Database initialized")
	return db, nil
}

// Wrap uses an already opened connection without touching the schema.
func Wrap(sqlDB *sql.DB, logger *zerolog.Logger) *DB {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "database").Logger()
	return &DB{
		DB:      sqlDB,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger:  &l,
	}
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS premises (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			town TEXT NOT NULL DEFAULT '',
			postcode TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			premises_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (premises_id) REFERENCES premises(id)
		)`,
		`CREATE TABLE IF NOT EXISTS bedspaces (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			reference TEXT NOT NULL,
			online_from TEXT NOT NULL,
			online_to TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (room_id) REFERENCES rooms(id)
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			bedspace_id TEXT NOT NULL,
			crn TEXT NOT NULL,
			arrival_date TEXT NOT NULL,
			departure_date TEXT NOT NULL,
			status TEXT NOT NULL,
			turnaround_working_days INTEGER,
			cancellation_reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (bedspace_id) REFERENCES bedspaces(id)
		)`,
		`CREATE TABLE IF NOT EXISTS voids (
			id TEXT PRIMARY KEY,
			bedspace_id TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			cancelled BOOLEAN NOT NULL DEFAULT 0,
			cancellation_notes TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (bedspace_id) REFERENCES bedspaces(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_premises ON rooms(premises_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bedspaces_room ON bedspaces(room_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_bedspace_dates ON bookings(bedspace_id, arrival_date, departure_date)`,
		`CREATE INDEX IF NOT EXISTS idx_voids_bedspace_dates ON voids(bedspace_id, start_date, end_date)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec %q: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
