package coupon

import (
	"context"

	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
)

const (
	StorageKey = "shop_coupon_v1"
	// WelcomeCode is put into the ledger when a visitor registers.
	WelcomeCode = "WELCOME10"
)

// Ledger is the single slot holding the last applied code. It stores whatever
// it is given; whether the code may be redeemed is decided by a Policy.
type Ledger struct {
	kv kv.Store
}

func NewLedger(s kv.Store) *Ledger {
	return &Ledger{kv: s}
}

func (l *Ledger) SetCode(ctx context.Context, code string) error {
	return l.kv.Set(ctx, StorageKey, catalog.NormalizeCode(code))
}

func (l *Ledger) CurrentCode(ctx context.Context) (string, error) {
	v, err := kv.GetString(ctx, l.kv, StorageKey)
	if err != nil {
		return "", err
	}
	return catalog.NormalizeCode(v), nil
}
