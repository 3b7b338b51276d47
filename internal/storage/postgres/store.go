package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/attendance-client/internal/errs"
	"github.com/and161185/attendance-client/internal/storage"
)

// Store keeps client state rows in client_state, scoped by namespace (one per device).
type Store struct {
	db        *DB
	namespace string
}

var _ storage.Store = (*Store)(nil)

// NewStore constructs a namespaced state store.
func NewStore(db *DB, namespace string) *Store { return &Store{db: db, namespace: namespace} }

// Get selects the value for key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM client_state WHERE namespace=$1 AND key=$2`
	var v string
	if err := s.db.Pool.QueryRow(ctx, q, s.namespace, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.ErrNotFound
		}
		return "", err
	}
	return v, nil
}

// Set upserts the value for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO client_state (namespace, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (namespace, key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`
	_, err := s.db.Pool.Exec(ctx, q, s.namespace, key, value)
	return err
}

// Remove deletes the row for key, if any.
func (s *Store) Remove(ctx context.Context, key string) error {
	const q = `DELETE FROM client_state WHERE namespace=$1 AND key=$2`
	_, err := s.db.Pool.Exec(ctx, q, s.namespace, key)
	return err
}
