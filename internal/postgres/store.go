package postgres

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
)

const (
	// Persistent state per profil: profile:{profile_id}:{storage_key}
	KeyProfile = "profile:%s:"
)

// ProfilePrefix is the key prefix of one profile's state.
func ProfilePrefix(profileID string) string { return fmt.Sprintf(KeyProfile, profileID) }

// Store is a kv.Store over the shop_state table.
type Store struct{ DB Querier }

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.DB.QueryRow(ctx, `SELECT value FROM shop_state WHERE key=$1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", kv.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "select %s", key)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO shop_state(key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	if err != nil {
		return errors.Wrapf(err, "upsert %s", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.Exec(ctx, `DELETE FROM shop_state WHERE key=$1`, key); err != nil {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}
