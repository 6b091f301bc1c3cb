package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/ariefcatur/go-heritage-shop.git/internal/events"
	kafkax "github.com/ariefcatur/go-heritage-shop.git/internal/kafka"
	"github.com/ariefcatur/go-heritage-shop.git/internal/redisx"
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memStore struct {
	mu   sync.Mutex
	rows map[string]Checkout
	fail error
}

func (m *memStore) Record(_ context.Context, c Checkout) (Checkout, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return Checkout{}, false, m.fail
	}
	if got, ok := m.rows[c.ID]; ok {
		return got, true, nil
	}
	m.rows[c.ID] = c
	return c, false, nil
}

func (m *memStore) Transition(_ context.Context, id string, from, to Status, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.Status != from || !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	c.Status, c.Reason = to, reason
	m.rows[id] = c
	return nil
}

type fixture struct {
	svc   *Service
	store *memStore
	bus   *events.Memory
	rdb   *redis.Client
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st := &memStore{rows: map[string]Checkout{}}
	bus := &events.Memory{}
	return fixture{
		svc: &Service{
			Repo:        st,
			Catalog:     catalog.Default(),
			Redis:       rdb,
			Publisher:   bus,
			ServiceName: "shop-checkout",
			Log:         zaptest.NewLogger(t),
		},
		store: st,
		bus:   bus,
		rdb:   rdb,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requested(t *testing.T, p events.CheckoutRequestedPayload) kafkago.Message {
	t.Helper()
	env, err := events.New(events.EventCheckoutRequested, "shop-api", "", p.CheckoutID, p)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(p.ProfileID), Value: kafkax.MustMarshal(env)}
}

func sweaterCheckout(total string) events.CheckoutRequestedPayload {
	return events.CheckoutRequestedPayload{
		CheckoutID: "chk-1",
		ProfileID:  "p-1",
		Email:      "anna@example.de",
		Method:     string(MethodPayPal),
		Lines:      []events.LineQty{{ProductID: "wool-knit-sweater", Color: "Schwarz", Size: "M", Qty: 2}},
		Code:       "WELCOME10",
		Currency:   "EUR",
		Subtotal:   dec("99.80"),
		Discount:   dec("9.98"),
		Total:      dec(total),
	}
}

func TestHandle_Accepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleCheckoutRequested(ctx, requested(t, sweaterCheckout("89.82"))))

	assert.Equal(t, StatusAccepted, f.store.rows["chk-1"].Status)
	msgs := f.bus.OnTopic(events.TopicCheckoutAccepted)
	require.Len(t, msgs, 1)
	assert.Equal(t, []byte("p-1"), msgs[0].Key)

	st, ok, err := redisx.CachedCheckoutStatus(ctx, f.rdb, "chk-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, string(StatusAccepted), st.Status)
}

func TestHandle_PriceMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleCheckoutRequested(ctx, requested(t, sweaterCheckout("1.00"))))

	row := f.store.rows["chk-1"]
	assert.Equal(t, StatusRejected, row.Status)
	assert.Equal(t, ReasonPriceMismatch, row.Reason)

	msgs := f.bus.OnTopic(events.TopicCheckoutRejected)
	require.Len(t, msgs, 1)
	env, err := msgs[0].Envelope()
	require.NoError(t, err)
	p, err := kafkax.UnwrapPayload[events.CheckoutRejectedPayload](env.Payload)
	require.NoError(t, err)
	assert.True(t, p.Expected.Equal(dec("89.82")))
	assert.True(t, p.Submitted.Equal(dec("1.00")))
}

func TestHandle_CodeWithoutRegisteredEmailIsNotDiscounted(t *testing.T) {
	f := newFixture(t)
	p := sweaterCheckout("89.82")
	p.Email = " "

	require.NoError(t, f.svc.HandleCheckoutRequested(context.Background(), requested(t, p)))
	assert.Equal(t, ReasonPriceMismatch, f.store.rows["chk-1"].Reason)
}

func TestHandle_EmptyCart(t *testing.T) {
	f := newFixture(t)
	p := sweaterCheckout("0")
	p.Lines = []events.LineQty{{ProductID: "discontinued", Qty: 3}}

	require.NoError(t, f.svc.HandleCheckoutRequested(context.Background(), requested(t, p)))
	assert.Equal(t, ReasonEmptyCart, f.store.rows["chk-1"].Reason)
	assert.Len(t, f.bus.OnTopic(events.TopicCheckoutRejected), 1)
}

func TestHandle_DuplicateEventIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := requested(t, sweaterCheckout("89.82"))

	require.NoError(t, f.svc.HandleCheckoutRequested(ctx, m))
	require.NoError(t, f.svc.HandleCheckoutRequested(ctx, m))
	assert.Len(t, f.bus.Messages(), 1)
}

func TestHandle_RedeliveredCheckoutRepublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// same checkout, new event id (producer retry)
	require.NoError(t, f.svc.HandleCheckoutRequested(ctx, requested(t, sweaterCheckout("89.82"))))
	require.NoError(t, f.svc.HandleCheckoutRequested(ctx, requested(t, sweaterCheckout("89.82"))))

	assert.Len(t, f.bus.OnTopic(events.TopicCheckoutAccepted), 2)
	assert.Equal(t, StatusAccepted, f.store.rows["chk-1"].Status)
}

func TestHandle_StoreFailureAllowsRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := requested(t, sweaterCheckout("89.82"))

	f.store.fail = errors.New("db down")
	require.Error(t, f.svc.HandleCheckoutRequested(ctx, m))
	assert.Empty(t, f.bus.Messages())

	f.store.fail = nil
	require.NoError(t, f.svc.HandleCheckoutRequested(ctx, m))
	assert.Len(t, f.bus.OnTopic(events.TopicCheckoutAccepted), 1)
}

func TestHandle_OtherEventTypesIgnored(t *testing.T) {
	f := newFixture(t)
	env, err := events.New(events.EventCartChanged, "shop-api", "", "p-1", events.CartChangedPayload{ProfileID: "p-1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleCheckoutRequested(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)}))
	assert.Empty(t, f.store.rows)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusRequested, StatusAccepted))
	assert.True(t, CanTransition(StatusRequested, StatusRejected))
	assert.False(t, CanTransition(StatusAccepted, StatusRejected))
	assert.False(t, CanTransition(StatusRejected, StatusRequested))
	assert.True(t, StatusRejected.Final())
	assert.False(t, StatusRequested.Final())
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"": MethodPayPal, " PayPal ": MethodPayPal, "card": MethodCard, "KLARNA": MethodKlarna} {
		m, ok := ParseMethod(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, m)
	}
	_, ok := ParseMethod("bitcoin")
	assert.False(t, ok)
}
