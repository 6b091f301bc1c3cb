// Package shop binds the storefront building blocks to one visitor and turns
// UI actions into results the handlers can render.
package shop

import (
	"context"
	"time"

	"github.com/ariefcatur/go-heritage-shop.git/internal/account"
	"github.com/ariefcatur/go-heritage-shop.git/internal/address"
	"github.com/ariefcatur/go-heritage-shop.git/internal/cart"
	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/ariefcatur/go-heritage-shop.git/internal/coupon"
	"github.com/ariefcatur/go-heritage-shop.git/internal/events"
	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
	"github.com/ariefcatur/go-heritage-shop.git/internal/onboarding"
	"go.uber.org/zap"
)

// StoreFunc returns the store scoped to one profile or session id.
type StoreFunc func(id string) kv.Store

type Options struct {
	Catalog *catalog.Catalog
	Policy  coupon.Policy
	// Profile holds state that survives the browser session (cart, ledger,
	// remembered slots, users directory, onboarding flags).
	Profile StoreFunc
	// Session holds the non-remembered account and address slots.
	Session     StoreFunc
	Verifier    address.Verifier
	Publisher   events.Publisher // nil: events are not published
	ServiceName string
	Logger      *zap.Logger
	Now         func() time.Time
}

type Service struct {
	catalog  *catalog.Catalog
	policy   coupon.Policy
	profile  StoreFunc
	session  StoreFunc
	verifier address.Verifier
	pub      events.Publisher
	producer string
	log      *zap.Logger
	now      func() time.Time
}

func New(o Options) *Service {
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
	if o.Verifier == nil {
		o.Verifier = address.AcceptAll{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Service{
		catalog:  o.Catalog,
		policy:   o.Policy,
		profile:  o.Profile,
		session:  o.Session,
		verifier: o.Verifier,
		pub:      o.Publisher,
		producer: o.ServiceName,
		log:      o.Logger,
		now:      o.Now,
	}
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }
func (s *Service) Policy() coupon.Policy     { return s.policy }

// Session is one visitor: a browser profile plus its current session.
type Session struct {
	svc       *Service
	profileID string
	traceID   string

	cart     *cart.Store
	ledger   *coupon.Ledger
	accounts *account.Service
	address  *address.Service
	flags    *onboarding.Flags
	log      *zap.Logger
}

func (s *Service) Session(profileID, sessionID string) *Session {
	pers := s.profile(profileID)
	sess := s.session(sessionID)
	return &Session{
		svc:       s,
		profileID: profileID,
		cart:      cart.NewStore(pers),
		ledger:    coupon.NewLedger(pers),
		accounts:  account.NewService(sess, pers),
		address:   address.NewService(sess, pers, s.verifier),
		flags:     onboarding.NewFlags(pers).WithClock(s.now),
		log:       s.log.With(zap.String("profile_id", profileID)),
	}
}

// WithTrace tags published events with a request id.
func (ss *Session) WithTrace(traceID string) *Session {
	ss.traceID = traceID
	return ss
}

func (ss *Session) emit(eventType, correlationID string, payload any) {
	if ss.svc.pub == nil {
		return
	}
	env, err := events.New(eventType, ss.svc.producer, ss.traceID, correlationID, payload)
	if err == nil {
		err = events.Emit(ss.svc.pub, env, ss.profileID)
	}
	if err != nil {
		ss.log.Error("publish event", zap.String("event_type", eventType), zap.Error(err))
	}
}

func (ss *Session) cartChanged(ctx context.Context, action string) {
	if ss.svc.pub == nil {
		return
	}
	lines, err := ss.cart.Lines(ctx)
	if err != nil {
		ss.log.Warn("read cart for event", zap.Error(err))
		return
	}
	p := events.CartChangedPayload{ProfileID: ss.profileID, Action: action, Lines: lineQtys(lines)}
	for _, l := range lines {
		p.Count += l.Qty
	}
	ss.emit(events.EventCartChanged, ss.profileID, p)
}

func lineQtys(lines []cart.Line) []events.LineQty {
	out := make([]events.LineQty, 0, len(lines))
	for _, l := range lines {
		out = append(out, events.LineQty{ProductID: l.ProductID, Color: l.Color, Size: l.Size, Qty: l.Qty})
	}
	return out
}
