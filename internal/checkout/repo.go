package checkout

import (
	"context"

	"github.com/ariefcatur/go-heritage-shop.git/internal/postgres"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("checkout not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repo struct{ DB postgres.Querier }

// Record: idempotent via checkout id.
// - jika id sudah ada -> return checkout yang tersimpan (existed=true).
func (r *Repo) Record(ctx context.Context, c Checkout) (Checkout, bool, error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO checkouts(id, profile_id, email, method, currency, code, subtotal, discount, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric, $10)
		ON CONFLICT (id) DO NOTHING
	`, c.ID, c.ProfileID, c.Email, string(c.Method), c.Currency, c.Code,
		c.Subtotal.StringFixed(2), c.Discount.StringFixed(2), c.Total.StringFixed(2), string(c.Status))
	if err != nil {
		return Checkout{}, false, errors.Wrap(err, "insert checkout")
	}
	if ct.RowsAffected() == 1 {
		return c, false, nil
	}
	existing, err := r.Get(ctx, c.ID)
	return existing, true, err
}

func (r *Repo) Get(ctx context.Context, id string) (Checkout, error) {
	var (
		c                         Checkout
		method, status            string
		subtotal, discount, total string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT id, profile_id, email, method, currency, code,
		       subtotal::text, discount::text, total::text, status, reason, created_at, updated_at
		FROM checkouts WHERE id=$1`, id).
		Scan(&c.ID, &c.ProfileID, &c.Email, &method, &c.Currency, &c.Code,
			&subtotal, &discount, &total, &status, &c.Reason, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Checkout{}, errors.Wrapf(ErrNotFound, "id=%s", id)
	}
	if err != nil {
		return Checkout{}, errors.Wrap(err, "select checkout")
	}
	c.Method, c.Status = Method(method), Status(status)
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&c.Subtotal, subtotal}, {&c.Discount, discount}, {&c.Total, total}} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return Checkout{}, errors.Wrap(err, "decode amount")
		}
	}
	return c, nil
}

// Transition pindah status hanya dari `from`; baris yang sudah berubah tidak disentuh.
func (r *Repo) Transition(ctx context.Context, id string, from, to Status, reason string) error {
	if !CanTransition(from, to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE checkouts SET status=$3, reason=$4, updated_at=now()
		WHERE id=$1 AND status=$2`, id, string(from), string(to), reason)
	if err != nil {
		return errors.Wrap(err, "update checkout")
	}
	if ct.RowsAffected() != 1 {
		return errors.Wrapf(ErrInvalidTransition, "%s is not %s", id, from)
	}
	return nil
}

func (r *Repo) GetStatus(ctx context.Context, id string) (Status, string, error) {
	var s, reason string
	err := r.DB.QueryRow(ctx, `SELECT status, reason FROM checkouts WHERE id=$1`, id).Scan(&s, &reason)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", errors.Wrapf(ErrNotFound, "id=%s", id)
	}
	if err != nil {
		return "", "", errors.Wrap(err, "select status")
	}
	return Status(s), reason, nil
}
