package shop

import (
	"context"

	"github.com/ariefcatur/go-heritage-shop.git/internal/apperr"
	"go.uber.org/zap"
)

// AddToCart adds qty of a product variant; blank color or size take the
// product defaults. There are no stock checks.
func (ss *Session) AddToCart(ctx context.Context, productID, color, size string, qty int) (Result, error) {
	if !ss.svc.catalog.Has(productID) {
		return ss.finish(ctx, "", apperr.NewFieldError("productId", MsgProductNotFound))
	}
	n, err := ss.cart.Add(ctx, productID, color, size, qty)
	if err != nil {
		return Result{}, err
	}
	ss.log.Debug("cart add", zap.String("product_id", productID), zap.Int("count", n))
	ss.cartChanged(ctx, "add")
	return ss.finish(ctx, MsgAdded, nil)
}

// SetQuantity changes the line at a persisted index. An unknown index leaves
// the cart untouched.
func (ss *Session) SetQuantity(ctx context.Context, index, qty int) (Result, error) {
	ok, err := ss.cart.SetQuantity(ctx, index, qty)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return ss.finish(ctx, "", apperr.NewInvalidArgument(MsgLineNotFound))
	}
	ss.cartChanged(ctx, "set_quantity")
	return ss.finish(ctx, MsgQtyUpdated, nil)
}

func (ss *Session) RemoveItem(ctx context.Context, index int) (Result, error) {
	ok, err := ss.cart.Remove(ctx, index)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return ss.finish(ctx, "", apperr.NewInvalidArgument(MsgLineNotFound))
	}
	ss.cartChanged(ctx, "remove")
	return ss.finish(ctx, MsgRemoved, nil)
}

// ApplyCoupon stores code in the ledger. Visitors the policy does not allow to
// redeem are refused before anything is stored.
func (ss *Session) ApplyCoupon(ctx context.Context, code string) (Result, error) {
	acct, err := ss.accounts.Current(ctx)
	if err != nil {
		return Result{}, err
	}
	if !ss.svc.policy.Eligible(acct) {
		return ss.finish(ctx, "", apperr.NewFailedPrecondition(MsgLoginFirst))
	}
	if err := ss.ledger.SetCode(ctx, code); err != nil {
		return Result{}, err
	}
	t, err := ss.Totals(ctx)
	if err != nil {
		return Result{}, err
	}
	if !t.CodeValid {
		return ss.finish(ctx, "", apperr.NewFieldError("coupon", MsgCouponInvalid))
	}
	return ss.finish(ctx, MsgCouponApplied, nil)
}
