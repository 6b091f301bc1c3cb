package kv

import (
	"context"

	"github.com/go-faster/errors"
)

// Shadowed is a value held in either a session slot or a persistent slot.
// The session slot wins when both are populated; writing one slot clears the other.
type Shadowed[T any] struct {
	Session    Store
	Persistent Store
	SessionKey string
	PersistKey string
}

func (s Shadowed[T]) Get(ctx context.Context) (T, bool, error) {
	var v T
	ok, err := GetJSON(ctx, s.Session, s.SessionKey, &v)
	if err != nil || ok {
		return v, ok, err
	}
	var p T
	ok, err = GetJSON(ctx, s.Persistent, s.PersistKey, &p)
	return p, ok, err
}

// Put stores v persistently when remember is set, otherwise for the session only.
func (s Shadowed[T]) Put(ctx context.Context, v T, remember bool) error {
	if remember {
		if err := SetJSON(ctx, s.Persistent, s.PersistKey, v); err != nil {
			return err
		}
		return s.clear(ctx, s.Session, s.SessionKey)
	}
	if err := SetJSON(ctx, s.Session, s.SessionKey, v); err != nil {
		return err
	}
	return s.clear(ctx, s.Persistent, s.PersistKey)
}

func (s Shadowed[T]) Clear(ctx context.Context) error {
	if err := s.clear(ctx, s.Persistent, s.PersistKey); err != nil {
		return err
	}
	return s.clear(ctx, s.Session, s.SessionKey)
}

func (s Shadowed[T]) clear(ctx context.Context, st Store, key string) error {
	if err := st.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}
