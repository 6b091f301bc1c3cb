package checkout

import (
	"context"
	"strings"

	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/ariefcatur/go-heritage-shop.git/internal/events"
	kafkax "github.com/ariefcatur/go-heritage-shop.git/internal/kafka"
	"github.com/ariefcatur/go-heritage-shop.git/internal/money"
	"github.com/ariefcatur/go-heritage-shop.git/internal/pricing"
	"github.com/ariefcatur/go-heritage-shop.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Store is the persistence the worker needs; *Repo implements it.
type Store interface {
	Record(ctx context.Context, c Checkout) (Checkout, bool, error)
	Transition(ctx context.Context, id string, from, to Status, reason string) error
}

type Service struct {
	Repo        Store
	Catalog     *catalog.Catalog
	Redis       redis.Cmdable
	Publisher   events.Publisher
	ServiceName string
	Log         *zap.Logger
}

// HandleCheckoutRequested: dipasang sebagai handler consumer.
func (s *Service) HandleCheckoutRequested(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env events.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventCheckoutRequested {
		return nil
	} // ignore

	// 2) dedup via Redis (pakai event_id)
	first, err := redisx.FirstDelivery(ctx, s.Redis, s.ServiceName, env.EventID)
	if err != nil {
		return err
	}
	if !first {
		s.Log.Debug("duplicate event", zap.String("event_id", env.EventID))
		return nil
	}

	if err := s.handle(ctx, env); err != nil {
		// lepas tanda dedup supaya redelivery bisa diproses ulang
		_ = redisx.ForgetDelivery(ctx, s.Redis, s.ServiceName, env.EventID)
		return err
	}
	return nil
}

func (s *Service) handle(ctx context.Context, env events.Envelope) error {
	// 3) decode payload
	p, err := kafkax.UnwrapPayload[events.CheckoutRequestedPayload](env.Payload)
	if err != nil {
		return err
	}
	log := s.Log.With(zap.String("checkout_id", p.CheckoutID), zap.String("profile_id", p.ProfileID))

	// 4) catat idempotent; event ulang untuk checkout final cukup publish ulang hasilnya
	rec, existed, err := s.Repo.Record(ctx, Checkout{
		ID:        p.CheckoutID,
		ProfileID: p.ProfileID,
		Email:     p.Email,
		Method:    Method(p.Method),
		Currency:  p.Currency,
		Code:      p.Code,
		Subtotal:  p.Subtotal,
		Discount:  p.Discount,
		Total:     p.Total,
		Status:    StatusRequested,
	})
	if err != nil {
		return err
	}
	if existed && rec.Status.Final() {
		log.Info("checkout already decided", zap.String("status", string(rec.Status)))
		return s.publishOutcome(ctx, p, rec.Status, rec.Reason, env.TraceID)
	}

	// 5) hitung ulang dari katalog sendiri, total dari client tidak dipercaya
	to, reason := s.verify(p)
	if err := s.Repo.Transition(ctx, p.CheckoutID, StatusRequested, to, reason); err != nil {
		return err
	}
	log.Info("checkout decided", zap.String("status", string(to)), zap.String("reason", reason))
	return s.publishOutcome(ctx, p, to, reason, env.TraceID)
}

func (s *Service) verify(p events.CheckoutRequestedPayload) (Status, string) {
	lines := make([]pricing.Line, 0, len(p.Lines))
	for _, l := range p.Lines {
		if l.Qty <= 0 || !s.Catalog.Has(l.ProductID) {
			continue
		}
		lines = append(lines, pricing.Line{ProductID: l.ProductID, Qty: l.Qty})
	}
	if len(lines) == 0 {
		return StatusRejected, ReasonEmptyCart
	}
	t := pricing.Compute(lines, s.Catalog, p.Code, redeemable(p))
	if t.Currency != p.Currency || !money.Round(t.Total, t.Currency).Equal(money.Round(p.Total, t.Currency)) {
		return StatusRejected, ReasonPriceMismatch
	}
	return StatusAccepted, ""
}

func (s *Service) expected(p events.CheckoutRequestedPayload) pricing.Totals {
	lines := make([]pricing.Line, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, pricing.Line{ProductID: l.ProductID, Qty: l.Qty})
	}
	return pricing.Compute(lines, s.Catalog, p.Code, redeemable(p))
}

// redeemable: diskon hanya untuk checkout akun terdaftar (ada email).
func redeemable(p events.CheckoutRequestedPayload) bool {
	return strings.TrimSpace(p.Email) != ""
}

func (s *Service) publishOutcome(ctx context.Context, p events.CheckoutRequestedPayload, st Status, reason, trace string) error {
	if err := redisx.CacheCheckoutStatus(ctx, s.Redis, p.CheckoutID, redisx.CheckoutStatus{Status: string(st), Reason: reason}); err != nil {
		s.Log.Warn("cache checkout status", zap.Error(err))
	}

	var (
		env events.Envelope
		err error
	)
	if st == StatusAccepted {
		env, err = events.New(events.EventCheckoutAccepted, s.ServiceName, trace, p.CheckoutID, events.CheckoutAcceptedPayload{
			CheckoutID: p.CheckoutID, ProfileID: p.ProfileID, Total: p.Total, Currency: p.Currency,
		})
	} else {
		env, err = events.New(events.EventCheckoutRejected, s.ServiceName, trace, p.CheckoutID, events.CheckoutRejectedPayload{
			CheckoutID: p.CheckoutID, ProfileID: p.ProfileID, Reason: reason,
			Expected: s.expected(p).Total, Submitted: p.Total,
		})
	}
	if err != nil {
		return err
	}
	return events.Emit(s.Publisher, env, p.ProfileID)
}
