package coupon

import (
	"strings"

	"github.com/ariefcatur/go-heritage-shop.git/internal/account"
	"github.com/go-faster/errors"
)

// Policy decides whether an account may redeem coupons.
type Policy int

const (
	// Gated: only registered accounts redeem. This is the default.
	Gated Policy = iota
	// Open: every visitor redeems, anonymous and guests included.
	Open
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gated":
		return Gated, nil
	case "open":
		return Open, nil
	default:
		return Gated, errors.Errorf("unknown coupon policy %q", s)
	}
}

func (p Policy) Eligible(a account.Account) bool {
	if p == Open {
		return true
	}
	return a.IsRegistered()
}

func (p Policy) String() string {
	if p == Open {
		return "open"
	}
	return "gated"
}
