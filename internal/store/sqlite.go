package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mfcabral/rulegate/internal/rule"
)

const schema = `
CREATE TABLE IF NOT EXISTS rules (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT    NOT NULL UNIQUE,
	condition  TEXT    NOT NULL,
	action     TEXT    NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SQLite is a durable Store backed by a single-file SQLite database. The
// action payload is stored as a JSON blob; the seq column preserves
// creation order across restarts and deletes.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	// modernc.org/sqlite serializes internally; a single connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &StorageError{Op: "migrate", Err: err}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Create(ctx context.Context, r *rule.Rule) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM rules WHERE id = ?)`, r.ID).Scan(&exists)
	if err != nil {
		return &StorageError{Op: "create", Err: err}
	}
	if exists {
		return ErrDuplicateID
	}

	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	payload, err := json.Marshal(r.Action)
	if err != nil {
		return fmt.Errorf("encode action payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rules (id, condition, action, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Condition, string(payload), now.UnixNano(), now.UnixNano())
	if err != nil {
		return &StorageError{Op: "create", Err: err}
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*rule.Rule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, condition, action, created_at, updated_at
		 FROM rules WHERE id = ?`, id)
	r, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Err: err}
	}
	return r, nil
}

func (s *SQLite) List(ctx context.Context) ([]*rule.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, condition, action, created_at, updated_at
		 FROM rules ORDER BY seq ASC`)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []*rule.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return out, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*rule.Rule, error) {
	var (
		r       rule.Rule
		payload string
		created int64
		updated int64
	)
	if err := row.Scan(&r.ID, &r.Condition, &payload, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &r.Action); err != nil {
		return nil, fmt.Errorf("decode action payload for rule %s: %w", r.ID, err)
	}
	r.CreatedAt = time.Unix(0, created)
	r.UpdatedAt = time.Unix(0, updated)
	return &r, nil
}
