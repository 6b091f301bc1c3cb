package shop

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-heritage-shop.git/internal/account"
	"github.com/ariefcatur/go-heritage-shop.git/internal/address"
	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/ariefcatur/go-heritage-shop.git/internal/coupon"
	"github.com/ariefcatur/go-heritage-shop.git/internal/events"
	kafkax "github.com/ariefcatur/go-heritage-shop.git/internal/kafka"
	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sweater = "wool-knit-sweater"

type harness struct {
	svc      *Service
	profiles map[string]*kv.Memory
	sessions map[string]*kv.Memory
	bus      *events.Memory
}

func memFunc(m map[string]*kv.Memory) StoreFunc {
	return func(id string) kv.Store {
		if _, ok := m[id]; !ok {
			m[id] = kv.NewMemory()
		}
		return m[id]
	}
}

func newHarness(t *testing.T, policy coupon.Policy) *harness {
	t.Helper()
	h := &harness{
		profiles: map[string]*kv.Memory{},
		sessions: map[string]*kv.Memory{},
		bus:      &events.Memory{},
	}
	h.svc = New(Options{
		Catalog:     catalog.Default(),
		Policy:      policy,
		Profile:     memFunc(h.profiles),
		Session:     memFunc(h.sessions),
		Publisher:   h.bus,
		ServiceName: "shop-api",
		Logger:      zaptest.NewLogger(t),
		Now:         func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) },
	})
	return h
}

func (h *harness) visitor() *Session { return h.svc.Session("p-1", "s-1") }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

func register(t *testing.T, ss *Session) {
	t.Helper()
	r, err := ss.Register(context.Background(), "anna@example.de", "geheim", "geheim", true)
	require.NoError(t, err)
	require.True(t, r.OK, r.Message)
}

func TestAddToCart(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()

	r, err := ss.AddToCart(ctx, sweater, "Schwarz", "M", 1)
	require.NoError(t, err)
	assert.True(t, r.OK)
	assert.Equal(t, MsgAdded, r.Message)

	r, err = ss.AddToCart(ctx, sweater, "Schwarz", "M", 1)
	require.NoError(t, err)
	require.Len(t, r.View.Lines, 1, "same variant merges")
	assert.Equal(t, 2, r.View.Lines[0].Qty)
	assert.Equal(t, 2, r.View.Count)
	assert.Equal(t, "Wollstrick-Pullover (Slim Fit)", r.View.Lines[0].Name)

	assert.Len(t, h.bus.OnTopic(events.TopicCartChanged), 2)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	r, err := h.visitor().AddToCart(context.Background(), "nope", "", "", 1)
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, MsgProductNotFound, r.Fields["productId"])
	assert.Zero(t, r.View.Count)
	assert.Empty(t, h.bus.Messages())
}

func TestSetQuantity_OutOfBoundsLeavesCart(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()
	_, _ = ss.AddToCart(ctx, sweater, "Schwarz", "M", 2)
	_, _ = ss.AddToCart(ctx, sweater, "Navy", "L", 1)
	before, err := ss.View(ctx)
	require.NoError(t, err)

	r, err := ss.SetQuantity(ctx, 5, 3)
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, before.Lines, r.View.Lines)

	r, err = ss.SetQuantity(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, r.OK)
	assert.Equal(t, 5, r.View.Count)
}

func TestRemoveItem(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()
	_, _ = ss.AddToCart(ctx, sweater, "Schwarz", "M", 2)

	r, err := ss.RemoveItem(ctx, 0)
	require.NoError(t, err)
	assert.True(t, r.OK)
	assert.Empty(t, r.View.Lines)

	r, err = ss.RemoveItem(ctx, 0)
	require.NoError(t, err)
	assert.False(t, r.OK)
}

func TestRegister_UnlocksWelcomeDiscount(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()
	_, _ = ss.AddToCart(ctx, sweater, "Schwarz", "M", 2)

	r, err := ss.Register(ctx, "anna@example.de", "geheim", "geheim", false)
	require.NoError(t, err)
	require.True(t, r.OK)
	assert.Equal(t, MsgRegistered, r.Message)

	tv := r.View.Totals
	assertAmount(t, "99.80", tv.Subtotal)
	assertAmount(t, "9.98", tv.Discount)
	assertAmount(t, "89.82", tv.Total)
	assert.Equal(t, "WELCOME10", tv.AppliedCode)
	assert.Equal(t, "- 9,98 € (WELCOME10)", tv.DiscountText)
	assert.Equal(t, "89,82 €", tv.TotalText)
	assert.True(t, r.View.CouponInput)
	assert.Equal(t, "WELCOME10", r.View.CouponCode)

	msgs := h.bus.OnTopic(events.TopicAccountRegistered)
	require.Len(t, msgs, 1)
	env, err := msgs[0].Envelope()
	require.NoError(t, err)
	p, err := kafkax.UnwrapPayload[events.AccountRegisteredPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "anna@example.de", p.Email)
}

func TestRegister_ValidationFailureReportsField(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	r, err := h.visitor().Register(context.Background(), "anna@example.de", "abc", "abc", false)
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, account.ErrMsgPasswordShort, r.Fields["password"])
	assert.Equal(t, "INVALID_ARGUMENT", r.Code)
	assert.Empty(t, h.bus.OnTopic(events.TopicAccountRegistered))
}

func TestApplyCoupon_GuestIsRefused(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()
	_, _ = ss.AddToCart(ctx, sweater, "Schwarz", "M", 2)
	_, err := ss.Guest(ctx, false)
	require.NoError(t, err)

	r, err := ss.ApplyCoupon(ctx, "SAVE5")
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, MsgLoginFirst, r.Message)
	assert.False(t, r.View.Totals.CodeValid)
	assertAmount(t, "0", r.View.Totals.Discount)
	assert.False(t, r.View.CouponInput)

	code, _ := h.profiles["p-1"].Get(ctx, coupon.StorageKey)
	assert.Empty(t, code, "nothing stored for an ineligible visitor")
}

func TestApplyCoupon_Registered(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()
	_, _ = ss.AddToCart(ctx, sweater, "Schwarz", "M", 1)
	register(t, ss)

	r, err := ss.ApplyCoupon(ctx, " save5 ")
	require.NoError(t, err)
	assert.True(t, r.OK)
	assert.Equal(t, MsgCouponApplied, r.Message)
	assertAmount(t, "44.90", r.View.Totals.Total)

	r, err = ss.ApplyCoupon(ctx, "FREESTUFF")
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, MsgCouponInvalid, r.Fields["coupon"])
	assertAmount(t, "49.90", r.View.Totals.Total)
	assert.Equal(t, "FREESTUFF", r.View.CouponCode, "invalid code stays in the ledger")
	assert.Empty(t, r.View.Totals.AppliedCode)
}

func TestOpenPolicy_GuestRedeems(t *testing.T) {
	h := newHarness(t, coupon.Open)
	ctx := context.Background()
	ss := h.visitor()
	_, _ = ss.AddToCart(ctx, sweater, "Schwarz", "M", 2)
	_, _ = ss.Guest(ctx, false)

	r, err := ss.ApplyCoupon(ctx, "WELCOME10")
	require.NoError(t, err)
	assert.True(t, r.OK)
	assertAmount(t, "89.82", r.View.Totals.Total)
}

func TestLogout_DropsDiscountButKeepsLedger(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()
	_, _ = ss.AddToCart(ctx, sweater, "Schwarz", "M", 2)
	register(t, ss)

	r, err := ss.Logout(ctx)
	require.NoError(t, err)
	assert.True(t, r.View.Account.Mode == account.ModeAnonymous)
	assertAmount(t, "99.80", r.View.Totals.Total)
	assert.Empty(t, r.View.CouponCode)

	r, err = ss.Login(ctx, "anna@example.de", "geheim", false)
	require.NoError(t, err)
	require.True(t, r.OK)
	assertAmount(t, "89.82", r.View.Totals.Total)
}

func TestSessionsShareProfile(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	a := h.svc.Session("p-1", "s-1")
	_, _ = a.AddToCart(ctx, sweater, "Schwarz", "M", 2)
	_, err := a.Guest(ctx, false)
	require.NoError(t, err)

	b := h.svc.Session("p-1", "s-2")
	v, err := b.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Count, "cart lives in the profile")
	assert.Equal(t, account.ModeAnonymous, v.Account.Mode, "non-remembered account stays in its session")
}

func TestSaveAddress(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()

	r, err := ss.SaveAddress(ctx, address.Address{Country: "DE", Zip: "1", City: "N", Street: "Musterstraße"}, true)
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Len(t, r.Fields, 3)
	assert.Nil(t, r.View.Address)

	r, err = ss.SaveAddress(ctx, address.Address{Country: "DE", Zip: "90427", City: "Nürnberg", Street: "Musterstraße 12"}, true)
	require.NoError(t, err)
	assert.True(t, r.OK)
	assert.Equal(t, MsgAddressSaved, r.Message)
	require.NotNil(t, r.View.Address)
	assert.Equal(t, "90427", r.View.Address.Zip)
}

func TestOnboarding(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()

	v, err := ss.View(ctx)
	require.NoError(t, err)
	assert.True(t, v.Onboarding.Welcome)
	assert.True(t, v.Onboarding.Consent)
	assert.True(t, v.Onboarding.DailyOffer)

	_, err = ss.DismissWelcome(ctx)
	require.NoError(t, err)
	r, err := ss.SetConsent(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, MsgConsentNecessary, r.Message)
	r, err = ss.DismissDailyOffer(ctx)
	require.NoError(t, err)

	assert.False(t, r.View.Onboarding.Welcome)
	assert.False(t, r.View.Onboarding.Consent)
	assert.False(t, r.View.Onboarding.DailyOffer)
}

func TestCheckout(t *testing.T) {
	h := newHarness(t, coupon.Gated)
	ctx := context.Background()
	ss := h.visitor()
	_, _ = ss.AddToCart(ctx, sweater, "Schwarz", "M", 2)

	r, err := ss.Checkout(ctx, "")
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, MsgRegisterToPay, r.Message)

	register(t, ss)
	r, err = ss.Checkout(ctx, "bitcoin")
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, MsgUnknownMethod, r.Fields["method"])

	r, err = ss.Checkout(ctx, "")
	require.NoError(t, err)
	require.True(t, r.OK, r.Message)
	assert.NotEmpty(t, r.CheckoutID)
	assert.Contains(t, r.Message, "Zahlung wird gestartet: PAYPAL • Gesamt: ")
	assert.Contains(t, r.Message, "89,82")
	assert.Zero(t, r.View.Count, "cart is emptied after submission")

	msgs := h.bus.OnTopic(events.TopicCheckoutRequested)
	require.Len(t, msgs, 1)
	env, err := msgs[0].Envelope()
	require.NoError(t, err)
	p, err := kafkax.UnwrapPayload[events.CheckoutRequestedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, r.CheckoutID, p.CheckoutID)
	assert.Equal(t, "WELCOME10", p.Code)
	assertAmount(t, "89.82", p.Total)
	assert.Equal(t, []byte("p-1"), msgs[0].Key)

	r, err = ss.Checkout(ctx, "card")
	require.NoError(t, err)
	assert.False(t, r.OK)
	assert.Equal(t, MsgEmptyCart, r.Message)
}

func TestNilPublisher(t *testing.T) {
	profiles, sessions := map[string]*kv.Memory{}, map[string]*kv.Memory{}
	svc := New(Options{Profile: memFunc(profiles), Session: memFunc(sessions)})
	r, err := svc.Session("p", "s").AddToCart(context.Background(), sweater, "", "", 1)
	require.NoError(t, err)
	assert.True(t, r.OK)
}
