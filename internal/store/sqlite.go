package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	msqlite "modernc.org/sqlite"

	"github.com/PratikDhanave/telemetry-ingest-service/internal/models"
)

//go:embed sqlite_schema.sql
var sqliteSchemaSQL string

// SQLiteStore keeps events in an embedded SQLite database. It backs local
// development and the end-to-end tests.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every new connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

// CreateEvent inserts one event row. A repeated id surfaces as an
// *OperationalError with code 1555 (SQLITE_CONSTRAINT_PRIMARYKEY).
func (s *SQLiteStore) CreateEvent(ctx context.Context, in models.EventInput) error {
	ev, err := buildEvent(in)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game_events(id, event_type, ts, game_name, game_type, game_version, payload)
		VALUES (?,?,?,?,?,?,?)
	`, ev.ID, ev.EventType, ev.Timestamp.UnixMilli(), ev.GameName, ev.GameType, ev.GameVersion, string(ev.Payload))

	return classifySQLite(err)
}

func classifySQLite(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return &OperationalError{Code: strconv.Itoa(sqliteErr.Code()), Err: err}
	}
	return err
}
