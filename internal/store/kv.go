package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Keys of the sync state.
const (
	KeyLedger     = "ledger"
	KeyCursor     = "cursor"
	KeyErrorQueue = "errorQueue"
)

// Get decodes the JSON value stored under key into v. It reports false,
// leaving v untouched, when the key has never been set.
func (d *DB) Get(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := d.Pool.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ? LIMIT 1;`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores v as JSON under key, replacing any previous value.
func (d *DB) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = d.Pool.ExecContext(ctx, `
INSERT INTO kv(key, value, updated_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at = excluded.updated_at;
`, key, string(b), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
