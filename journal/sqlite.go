package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists journal entries in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the journal database at path, creating the
// schema if needed. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}

	schema := `CREATE TABLE IF NOT EXISTS journal (
		stream  TEXT    NOT NULL,
		version INTEGER NOT NULL,
		id      TEXT    NOT NULL,
		type    TEXT    NOT NULL,
		time    TEXT    NOT NULL,
		data    TEXT,
		PRIMARY KEY (stream, version)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append adds entries to a stream with optimistic version checking.
func (s *SQLiteStore) Append(ctx context.Context, stream string, expectedVersion int, entries []*Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	version, err := streamVersionTx(ctx, tx, stream)
	if err != nil {
		return 0, err
	}
	if expectedVersion != version {
		return 0, ErrConflict
	}

	for _, e := range entries {
		version++
		var data any
		if e.Data != nil {
			data = string(e.Data)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO journal (stream, version, id, type, time, data) VALUES (?, ?, ?, ?, ?, ?)`,
			stream, version, e.ID, e.Type, e.Time.UTC().Format(time.RFC3339Nano), data)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return version, nil
}

// Read returns entries in a stream from the given version onward.
func (s *SQLiteStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stream, version, id, type, time, data FROM journal
		 WHERE stream = ? AND version >= ? ORDER BY version`,
		stream, fromVersion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		var e Entry
		var ts string
		var data sql.NullString
		if err := rows.Scan(&e.Stream, &e.Version, &e.ID, &e.Type, &ts, &data); err != nil {
			return nil, err
		}
		e.Time, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("journal: parse entry time: %w", err)
		}
		if data.Valid {
			e.Data = []byte(data.String)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}

// StreamVersion returns the current version of a stream, or -1.
func (s *SQLiteStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), -1) FROM journal WHERE stream = ?`,
		stream).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func streamVersionTx(ctx context.Context, tx *sql.Tx, stream string) (int, error) {
	var version int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), -1) FROM journal WHERE stream = ?`,
		stream).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

var _ Store = (*SQLiteStore)(nil)
