package shop

import (
	"context"

	"github.com/ariefcatur/go-heritage-shop.git/internal/account"
	"github.com/ariefcatur/go-heritage-shop.git/internal/address"
	"github.com/ariefcatur/go-heritage-shop.git/internal/apperr"
	"github.com/ariefcatur/go-heritage-shop.git/internal/cart"
	"github.com/ariefcatur/go-heritage-shop.git/internal/money"
	"github.com/ariefcatur/go-heritage-shop.git/internal/onboarding"
	"github.com/ariefcatur/go-heritage-shop.git/internal/pricing"
	"github.com/shopspring/decimal"
)

// Result is what every action returns. Expected failures are OK=false with a
// message; infrastructure failures are returned as errors instead.
type Result struct {
	OK         bool              `json:"ok"`
	Message    string            `json:"message,omitempty"`
	Code       string            `json:"code,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	CheckoutID string            `json:"checkoutId,omitempty"`
	View       *View             `json:"view,omitempty"`
}

type AccountView struct {
	Mode       account.Mode `json:"mode"`
	Email      string       `json:"email,omitempty"`
	Registered bool         `json:"registered"`
}

type LineView struct {
	Index     int             `json:"index"`
	Key       string          `json:"key"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UnitText  string          `json:"unitText"`
	LineText  string          `json:"lineText"`
}

type TotalsView struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	SubtotalText string          `json:"subtotalText"`
	DiscountText string          `json:"discountText"`
	TotalText    string          `json:"totalText"`
	AppliedCode  string          `json:"appliedCode,omitempty"`
	CodeValid    bool            `json:"codeValid"`
	Currency     string          `json:"currency"`
}

type View struct {
	Account AccountView `json:"account"`
	Count   int         `json:"count"`
	Lines   []LineView  `json:"lines"`
	Totals  TotalsView  `json:"totals"`
	// CouponInput is whether the coupon field is offered at all.
	CouponInput bool             `json:"couponInput"`
	CouponCode  string           `json:"couponCode,omitempty"`
	Address     *address.Address `json:"address,omitempty"`
	Onboarding  onboarding.State `json:"onboarding"`
}

// Totals recomputes pricing from the current state.
func (ss *Session) Totals(ctx context.Context) (pricing.Totals, error) {
	t, _, _, err := ss.totals(ctx)
	return t, err
}

func (ss *Session) totals(ctx context.Context) (pricing.Totals, []cart.Entry, account.Account, error) {
	acct, err := ss.accounts.Current(ctx)
	if err != nil {
		return pricing.Totals{}, nil, acct, err
	}
	entries, err := ss.cart.List(ctx, ss.svc.catalog)
	if err != nil {
		return pricing.Totals{}, nil, acct, err
	}
	code, err := ss.ledger.CurrentCode(ctx)
	if err != nil {
		return pricing.Totals{}, nil, acct, err
	}
	t := pricing.Compute(cart.PricingLines(entries), ss.svc.catalog, code, ss.svc.policy.Eligible(acct))
	return t, entries, acct, nil
}

// View recomputes everything the storefront renders. Nothing is cached.
func (ss *Session) View(ctx context.Context) (View, error) {
	t, entries, acct, err := ss.totals(ctx)
	if err != nil {
		return View{}, err
	}
	count, err := ss.cart.Count(ctx)
	if err != nil {
		return View{}, err
	}
	code, err := ss.ledger.CurrentCode(ctx)
	if err != nil {
		return View{}, err
	}
	ob, err := ss.flags.State(ctx, acct.IsAnonymous())
	if err != nil {
		return View{}, err
	}
	addr, hasAddr, err := ss.address.Current(ctx)
	if err != nil {
		return View{}, err
	}

	eligible := ss.svc.policy.Eligible(acct)
	v := View{
		Account:     AccountView{Mode: acct.Mode, Email: acct.Email, Registered: acct.IsRegistered()},
		Count:       count,
		Lines:       make([]LineView, 0, len(entries)),
		Totals:      totalsView(t),
		CouponInput: eligible,
		Onboarding:  ob,
	}
	if eligible {
		v.CouponCode = code
	}
	if hasAddr {
		v.Address = &addr
	}
	for _, e := range entries {
		lv := LineView{
			Index:     e.Index,
			Key:       e.Line.Key,
			ProductID: e.Line.ProductID,
			Name:      e.Product.Name,
			Color:     e.Line.Color,
			Size:      e.Line.Size,
			Qty:       e.Line.Qty,
			UnitPrice: e.Product.Price,
			UnitText:  money.Format(e.Product.Price, t.Currency),
			LineText:  money.Format(e.Product.Price.Mul(decimal.NewFromInt(int64(e.Line.Qty))), t.Currency),
		}
		if len(e.Product.Images) > 0 {
			lv.Image = e.Product.Images[0]
		}
		v.Lines = append(v.Lines, lv)
	}
	return v, nil
}

func totalsView(t pricing.Totals) TotalsView {
	tv := TotalsView{
		Subtotal:     money.Round(t.Subtotal, t.Currency),
		Discount:     money.Round(t.Discount, t.Currency),
		Total:        money.Round(t.Total, t.Currency),
		SubtotalText: money.Format(t.Subtotal, t.Currency),
		DiscountText: money.Format(decimal.Zero, t.Currency),
		TotalText:    money.Format(t.Total, t.Currency),
		AppliedCode:  t.AppliedCode,
		CodeValid:    t.CodeValid,
		Currency:     t.Currency,
	}
	if t.CodeValid {
		tv.DiscountText = "- " + money.Format(t.Discount, t.Currency) + " (" + t.AppliedCode + ")"
	}
	return tv
}

// finish turns an action outcome into a Result carrying the fresh view.
func (ss *Session) finish(ctx context.Context, msg string, err error) (Result, error) {
	r := Result{OK: true, Message: msg}
	if err != nil {
		ce, ok := apperr.As(err)
		if !ok {
			return Result{}, err
		}
		r = Result{Message: ce.Message, Code: ce.Code.String(), Fields: ce.Fields}
	}
	v, err := ss.View(ctx)
	if err != nil {
		return Result{}, err
	}
	r.View = &v
	return r, nil
}
