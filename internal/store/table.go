package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"
)

const schemaVersion = 1

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

// Put writes value under key, replacing any previous value. The row keeps
// its original position in enumeration order.
func (d *DB) Put(ctx context.Context, key string, value []byte) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO kv(key, value, updated_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at = excluded.updated_at;
`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var b []byte
	err := d.Pool.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ? LIMIT 1;`, key).Scan(&b)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return b, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (d *DB) Delete(ctx context.Context, key string) error {
	if _, err := d.Pool.ExecContext(ctx, `DELETE FROM kv WHERE key = ?;`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Keys lists keys starting with prefix in insertion order.
func (d *DB) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT key
FROM kv
WHERE substr(key, 1, ?) = ?
ORDER BY rowid;
`, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
