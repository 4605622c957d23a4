// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned by Get when a key is absent.
var ErrNotFound = eris.New("store: key not found")

// Put stores value under bucket/key, replacing any previous value.
func (s *Store) Put(ctx context.Context, bucket, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (bucket, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(bucket, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		bucket, key, string(value), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return eris.Wrapf(err, "store: put %s/%s", bucket, key)
	}
	return nil
}

// Get returns the value under bucket/key or ErrNotFound.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE bucket = ? AND key = ?`, bucket, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: get %s/%s", bucket, key)
	}
	return []byte(value), nil
}

// Delete removes bucket/key. It reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, bucket, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE bucket = ? AND key = ?`, bucket, key)
	if err != nil {
		return false, eris.Wrapf(err, "store: delete %s/%s", bucket, key)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "store: rows affected")
	}
	return n > 0, nil
}

// List returns every value in bucket ordered by key.
func (s *Store) List(ctx context.Context, bucket string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT value FROM kv WHERE bucket = ? ORDER BY key`, bucket)
	if err != nil {
		return nil, eris.Wrapf(err, "store: list %s", bucket)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, eris.Wrapf(err, "store: scan %s", bucket)
		}
		out = append(out, []byte(value))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "store: list %s", bucket)
	}
	return out, nil
}
