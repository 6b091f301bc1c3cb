package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-heritage-shop.git/internal/apperr"
	"github.com/ariefcatur/go-heritage-shop.git/internal/cart"
	"github.com/ariefcatur/go-heritage-shop.git/internal/checkout"
	"github.com/ariefcatur/go-heritage-shop.git/internal/events"
	"github.com/ariefcatur/go-heritage-shop.git/internal/money"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Checkout submits the displayed cart for payment. Only registered accounts
// may pay. No money moves here: a CheckoutRequested event is published and
// the cart is emptied.
func (ss *Session) Checkout(ctx context.Context, method string) (Result, error) {
	m, ok := checkout.ParseMethod(method)
	if !ok {
		return ss.finish(ctx, "", apperr.NewFieldError("method", MsgUnknownMethod))
	}
	t, entries, acct, err := ss.totals(ctx)
	if err != nil {
		return Result{}, err
	}
	if !acct.IsRegistered() {
		return ss.finish(ctx, "", apperr.NewUnauthenticated(MsgRegisterToPay))
	}
	if len(entries) == 0 {
		return ss.finish(ctx, "", apperr.NewFailedPrecondition(MsgEmptyCart))
	}

	lines := make([]cart.Line, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Line)
	}
	id := uuid.NewString()
	ss.emit(events.EventCheckoutRequested, id, events.CheckoutRequestedPayload{
		CheckoutID: id,
		ProfileID:  ss.profileID,
		Email:      acct.Email,
		Method:     string(m),
		Lines:      lineQtys(lines),
		Code:       t.AppliedCode,
		Currency:   t.Currency,
		Subtotal:   t.Subtotal,
		Discount:   t.Discount,
		Total:      t.Total,
	})
	if err := ss.cart.Clear(ctx); err != nil {
		return Result{}, err
	}
	ss.log.Info("checkout requested", zap.String("checkout_id", id), zap.String("method", string(m)))
	ss.cartChanged(ctx, "clear")

	r, err := ss.finish(ctx, fmt.Sprintf(MsgPaymentStarted, strings.ToUpper(string(m)), money.Format(t.Total, t.Currency)), nil)
	r.CheckoutID = id
	return r, err
}
