package localcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteJournal keeps each collection as a single row in a local SQLite file.
type SQLiteJournal struct {
	db *sqlx.DB
}

// OpenSQLite creates or opens the journal database at path. The pool is held
// to one connection since SQLite allows a single writer.
func OpenSQLite(path string) (*SQLiteJournal, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply local cache schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) Load(ctx context.Context, collection string) ([]byte, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	var payload []byte
	err := j.db.GetContext(ctx, &payload, `SELECT payload FROM collections WHERE name = ?`, collection)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (j *SQLiteJournal) Store(ctx context.Context, collection string, payload []byte) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	const query = `
		INSERT INTO collections (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE
		SET payload = excluded.payload,
		    updated_at = excluded.updated_at
	`
	_, err := j.db.ExecContext(ctx, query, collection, payload, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (j *SQLiteJournal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

var _ ports.Journal = (*SQLiteJournal)(nil)
