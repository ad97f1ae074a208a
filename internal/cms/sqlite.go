package cms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"peptidology.com/storefront/internal/fields"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS field_sets (
	scope      TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStore keeps each field scope as a JSON document in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cms: sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cms: open sqlite %s: %w", path, err)
	}
	// modernc sqlite serialises writers; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cms: migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Fields implements Store.
func (s *SQLiteStore) Fields(ctx context.Context, scope fields.Scope) (fields.Set, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM field_sets WHERE scope = ?`, string(scope)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return fields.Set{}, ErrNotFound
	}
	if err != nil {
		return fields.Set{}, fmt.Errorf("cms: query %s: %w", scope, err)
	}
	raw := map[string]any{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return fields.Set{}, fmt.Errorf("cms: decode %s: %w", scope, err)
	}
	return fields.New(raw), nil
}

// Put replaces the fields stored for scope.
func (s *SQLiteStore) Put(ctx context.Context, scope fields.Scope, set fields.Set) error {
	payload, err := json.Marshal(set.Raw())
	if err != nil {
		return fmt.Errorf("cms: encode %s: %w", scope, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO field_sets (scope, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(scope) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(scope), string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("cms: store %s: %w", scope, err)
	}
	return nil
}

// Scopes lists the stored scopes in lexical order.
func (s *SQLiteStore) Scopes(ctx context.Context) ([]fields.Scope, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT scope FROM field_sets ORDER BY scope`)
	if err != nil {
		return nil, fmt.Errorf("cms: list scopes: %w", err)
	}
	defer rows.Close()
	var scopes []fields.Scope
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, err
		}
		scopes = append(scopes, fields.Scope(scope))
	}
	return scopes, rows.Err()
}
