package pricing

import (
	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line is what the engine needs from a cart line.
type Line struct {
	ProductID string
	Qty       int
}

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	AppliedCode string          `json:"applied_code,omitempty"`
	CodeValid   bool            `json:"code_valid"`
	Currency    string          `json:"currency"`
}

// Compute derives totals from the current state. It is pure: same inputs, same
// result, nothing cached. Lines whose product is missing contribute nothing.
// When eligible is false the ledger code is not even looked up.
func Compute(lines []Line, cat *catalog.Catalog, ledgerCode string, eligible bool) Totals {
	t := Totals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Currency: cat.Currency(),
	}
	for _, l := range lines {
		p, ok := cat.Find(l.ProductID)
		if !ok {
			continue
		}
		t.Subtotal = t.Subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}

	if eligible {
		code := catalog.NormalizeCode(ledgerCode)
		if rule, ok := cat.Coupon(code); ok {
			t.CodeValid = true
			t.AppliedCode = code
			t.Discount = Discount(rule, t.Subtotal)
		}
	}

	t.Total = decimal.Max(decimal.Zero, t.Subtotal.Sub(t.Discount))
	return t
}

// Discount applies one rule to a subtotal, clamped to [0, subtotal].
func Discount(rule catalog.CouponRule, subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch rule.Kind {
	case catalog.CouponPercent:
		d = subtotal.Mul(rule.Value).Div(hundred)
	case catalog.CouponFixed:
		d = rule.Value
	default:
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	return d
}
