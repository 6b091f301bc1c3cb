package address

import (
	"context"
	"regexp"
	"strings"

	"github.com/ariefcatur/go-heritage-shop.git/internal/apperr"
	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
)

const (
	SessionKey = "shop_address_session_v1"
	PersistKey = "shop_address_persist_v1"

	DefaultCountry = "DE"

	ErrMsgCheck      = "Adresse prüfen"
	ErrMsgZip        = "Bitte gültige PLZ eingeben."
	ErrMsgCity       = "Bitte gültige Stadt eingeben."
	ErrMsgStreet     = "Bitte Straße + Hausnummer (z.B. Musterstraße 12) eingeben."
	ErrMsgUnverified = "Adresse konnte nicht bestätigt werden. Bitte prüfen."
)

type Address struct {
	Country string `json:"country"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
	Street  string `json:"street"`
}

var (
	streetRe = regexp.MustCompile(`^[^\d]{2,}\s+\d+[a-zA-Z]?$`)
	zipRe    = map[string]*regexp.Regexp{
		"DE": regexp.MustCompile(`^\d{5}$`),
		"AT": regexp.MustCompile(`^\d{4}$`),
		"CH": regexp.MustCompile(`^\d{4}$`),
	}
)

// Normalize trims every field and defaults the country.
func Normalize(a Address) Address {
	a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	a.Zip = strings.TrimSpace(a.Zip)
	a.City = strings.TrimSpace(a.City)
	a.Street = strings.TrimSpace(a.Street)
	return a
}

// Validate checks every field and reports all failures at once, keyed by field.
// Zip codes of countries without a known format are not checked.
func Validate(a Address) map[string]string {
	bad := map[string]string{}
	if re, ok := zipRe[a.Country]; ok && !re.MatchString(a.Zip) {
		bad["zip"] = ErrMsgZip
	}
	if len([]rune(a.City)) < 2 {
		bad["city"] = ErrMsgCity
	}
	if !streetRe.MatchString(a.Street) {
		bad["street"] = ErrMsgStreet
	}
	return bad
}

// Verifier confirms an address exists. Real postal verification is out of scope.
type Verifier interface {
	Verify(ctx context.Context, a Address) (bool, error)
}

// AcceptAll is the default Verifier.
type AcceptAll struct{}

func (AcceptAll) Verify(context.Context, Address) (bool, error) { return true, nil }

type Service struct {
	slot     kv.Shadowed[Address]
	verifier Verifier
}

func NewService(session, persistent kv.Store, v Verifier) *Service {
	if v == nil {
		v = AcceptAll{}
	}
	return &Service{
		slot: kv.Shadowed[Address]{
			Session:    session,
			Persistent: persistent,
			SessionKey: SessionKey,
			PersistKey: PersistKey,
		},
		verifier: v,
	}
}

func (s *Service) Current(ctx context.Context) (Address, bool, error) {
	return s.slot.Get(ctx)
}

// Save validates, verifies and stores the address; remember selects the
// persistent slot over the session slot.
func (s *Service) Save(ctx context.Context, a Address, remember bool) (Address, error) {
	a = Normalize(a)
	if bad := Validate(a); len(bad) > 0 {
		return Address{}, &apperr.CommandError{Code: apperr.StatusInvalidArgument, Message: ErrMsgCheck, Fields: bad}
	}
	ok, err := s.verifier.Verify(ctx, a)
	if err != nil {
		return Address{}, err
	}
	if !ok {
		return Address{}, apperr.NewFailedPrecondition(ErrMsgUnverified)
	}
	return a, s.slot.Put(ctx, a, remember)
}
