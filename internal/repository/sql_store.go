package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// KVSchema creates the table backing SQLStore on PostgreSQL.
const KVSchema = `CREATE TABLE IF NOT EXISTS app_kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// SQLiteKVSchema is KVSchema for SQLite.
const SQLiteKVSchema = `CREATE TABLE IF NOT EXISTS app_kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLStore is a KVStore persisted in the app_kv table. The queries run
// unchanged on PostgreSQL and SQLite.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore constructs the store.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type kvRow struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Get returns the value for key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM app_kv WHERE key = $1`
	var value string
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("get kv %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	const query = `INSERT INTO app_kv (key, value, updated_at)
VALUES (:key, :value, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	row := kvRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert kv %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM app_kv WHERE key IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("build kv delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete kv: %w", err)
	}
	return nil
}

// Keys lists keys beginning with prefix.
func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	const query = `SELECT key FROM app_kv WHERE key LIKE $1 ESCAPE '\' ORDER BY key ASC`
	var keys []string
	if err := s.db.SelectContext(ctx, &keys, query, escapeLike(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("list kv keys: %w", err)
	}
	return keys, nil
}

func escapeLike(raw string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(raw)
}
