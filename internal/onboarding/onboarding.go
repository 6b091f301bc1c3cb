// Package onboarding tracks the one-off popups shown to a visitor.
package onboarding

import (
	"context"
	"time"
	_ "time/tzdata"

	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
)

const (
	WelcomeKey    = "shop_welcome_seen_v2"
	ConsentKey    = "shop_cookie_consent_v1"
	DailyOfferKey = "shop_daily_offer_v1"

	ConsentAll       = "all"
	ConsentNecessary = "necessary"

	dateLayout = "2006-01-02"
)

var berlin = loadZone("Europe/Berlin")

func loadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// State says which popups are due right now.
type State struct {
	Welcome    bool   `json:"welcome"`
	Consent    bool   `json:"consent"`
	DailyOffer bool   `json:"dailyOffer"`
	ConsentSet string `json:"consentValue,omitempty"`
}

type Flags struct {
	kv  kv.Store
	now func() time.Time
}

func NewFlags(s kv.Store) *Flags {
	return &Flags{kv: s, now: time.Now}
}

// WithClock overrides the clock used for the daily offer.
func (f *Flags) WithClock(now func() time.Time) *Flags {
	f.now = now
	return f
}

func (f *Flags) today() string {
	return f.now().In(berlin).Format(dateLayout)
}

// State reports the due popups. anonymous is whether no account is active;
// the welcome popup is only offered to anonymous visitors.
func (f *Flags) State(ctx context.Context, anonymous bool) (State, error) {
	seen, err := kv.GetString(ctx, f.kv, WelcomeKey)
	if err != nil {
		return State{}, err
	}
	consent, err := kv.GetString(ctx, f.kv, ConsentKey)
	if err != nil {
		return State{}, err
	}
	offer, err := kv.GetString(ctx, f.kv, DailyOfferKey)
	if err != nil {
		return State{}, err
	}

	st := State{
		Welcome:    anonymous && seen != "1",
		Consent:    consent != ConsentAll && consent != ConsentNecessary,
		DailyOffer: offer != f.today(),
	}
	if !st.Consent {
		st.ConsentSet = consent
	}
	return st, nil
}

func (f *Flags) DismissWelcome(ctx context.Context) error {
	return f.kv.Set(ctx, WelcomeKey, "1")
}

func (f *Flags) SetConsent(ctx context.Context, accept bool) error {
	v := ConsentNecessary
	if accept {
		v = ConsentAll
	}
	return f.kv.Set(ctx, ConsentKey, v)
}

func (f *Flags) DismissDailyOffer(ctx context.Context) error {
	return f.kv.Set(ctx, DailyOfferKey, f.today())
}
