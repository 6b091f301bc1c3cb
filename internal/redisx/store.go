package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// Store is a kv.Store whose keys expire after ttl of inactivity; every read
// and write pushes the expiry forward.
type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.GetEx(ctx, key, s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", kv.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "redis get %s", key)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "redis del %s", key)
	}
	return nil
}

// FirstDelivery marks id as processed by service and reports whether this is
// the first time. Marks expire after TTLDedup.
func FirstDelivery(ctx context.Context, rdb redis.Cmdable, service, id string) (bool, error) {
	ok, err := rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, service, id), "1", TTLDedup).Result()
	if err != nil {
		return false, errors.Wrap(err, "dedup")
	}
	return ok, nil
}

// ForgetDelivery drops a dedup mark so a failed event can be retried.
func ForgetDelivery(ctx context.Context, rdb redis.Cmdable, service, id string) error {
	return rdb.Del(ctx, fmt.Sprintf(KeyDedup, service, id)).Err()
}

// CheckoutStatus is the cached view of a checkout.
type CheckoutStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func CacheCheckoutStatus(ctx context.Context, rdb redis.Cmdable, checkoutID string, st CheckoutStatus) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, fmt.Sprintf(KeyCheckoutStatus, checkoutID), b, TTLStatusCache).Err()
}

// CacheCheckoutStatusIfAbsent writes st only when nothing is cached yet, so a
// status written by the worker is never replaced by an older one.
func CacheCheckoutStatusIfAbsent(ctx context.Context, rdb redis.Cmdable, checkoutID string, st CheckoutStatus) (bool, error) {
	b, err := json.Marshal(st)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, fmt.Sprintf(KeyCheckoutStatus, checkoutID), b, TTLStatusCache).Result()
}

// CachedCheckoutStatus returns found=false on a cache miss.
func CachedCheckoutStatus(ctx context.Context, rdb redis.Cmdable, checkoutID string) (CheckoutStatus, bool, error) {
	var st CheckoutStatus
	b, err := rdb.Get(ctx, fmt.Sprintf(KeyCheckoutStatus, checkoutID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return st, false, nil
	}
	if err != nil {
		return st, false, err
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return st, false, nil
	}
	return st, true, nil
}
