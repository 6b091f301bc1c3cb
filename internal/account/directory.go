package account

import (
	"context"
	"strings"

	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
)

// Directory is the profile-local list of registered users.
type Directory struct {
	kv kv.Store
}

func NewDirectory(s kv.Store) *Directory {
	return &Directory{kv: s}
}

// All returns the stored users; unreadable data reads as an empty directory.
func (d *Directory) All(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := kv.GetJSON(ctx, d.kv, UsersKey, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

func (d *Directory) Exists(ctx context.Context, email string) (bool, error) {
	users, err := d.All(ctx)
	if err != nil {
		return false, err
	}
	email = normalizeEmail(email)
	for _, u := range users {
		if normalizeEmail(u.Email) == email {
			return true, nil
		}
	}
	return false, nil
}

// Match reports whether (email, password) is a known pair.
func (d *Directory) Match(ctx context.Context, email, password string) (bool, error) {
	users, err := d.All(ctx)
	if err != nil {
		return false, err
	}
	email = normalizeEmail(email)
	for _, u := range users {
		if normalizeEmail(u.Email) == email && u.Password == password {
			return true, nil
		}
	}
	return false, nil
}

func (d *Directory) Append(ctx context.Context, u User) error {
	users, err := d.All(ctx)
	if err != nil {
		return err
	}
	users = append(users, u)
	return kv.SetJSON(ctx, d.kv, UsersKey, users)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
