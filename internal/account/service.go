package account

import (
	"context"
	"strings"
	"time"

	"github.com/ariefcatur/go-heritage-shop.git/internal/apperr"
	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
)

const (
	ErrMsgInvalidEmail     = "Bitte gültige E-Mail."
	ErrMsgPasswordShort    = "Passwort zu kurz."
	ErrMsgPasswordMismatch = "Passwörter stimmen nicht überein."
	ErrMsgEmailExists      = "E-Mail existiert bereits."
	ErrMsgInvalidLogin     = "Bitte gültige E-Mail und Passwort eingeben."
	ErrMsgWrongCredentials = "Falsche Daten."
	ErrMsgAlreadySignedIn  = "Du bist eingeloggt. Du kannst dich nur abmelden."
)

// Service owns the account slots and the users directory of one visitor.
type Service struct {
	slot kv.Shadowed[Account]
	dir  *Directory
	now  func() time.Time
}

// NewService binds the account state machine to a visitor's session and
// persistent stores. The users directory lives in the persistent store.
func NewService(session, persistent kv.Store) *Service {
	return &Service{
		slot: kv.Shadowed[Account]{
			Session:    session,
			Persistent: persistent,
			SessionKey: SessionKey,
			PersistKey: PersistKey,
		},
		dir: NewDirectory(persistent),
		now: time.Now,
	}
}

// Current returns the active account; absent or unrecognised data is anonymous.
func (s *Service) Current(ctx context.Context) (Account, error) {
	a, ok, err := s.slot.Get(ctx)
	if err != nil {
		return Account{}, err
	}
	if !ok || (a.Mode != ModeGuest && a.Mode != ModeUser) {
		return Account{}, nil
	}
	return a, nil
}

func (s *Service) Register(ctx context.Context, email, password, confirm string, remember bool) (Account, error) {
	if err := s.requireAnonymous(ctx); err != nil {
		return Account{}, err
	}
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	confirm = strings.TrimSpace(confirm)

	if !strings.Contains(email, "@") {
		return Account{}, apperr.NewFieldError("email", ErrMsgInvalidEmail)
	}
	if len([]rune(password)) < MinPasswordLen {
		return Account{}, apperr.NewFieldError("password", ErrMsgPasswordShort)
	}
	if password != confirm {
		return Account{}, apperr.NewFieldError("confirm_password", ErrMsgPasswordMismatch)
	}
	exists, err := s.dir.Exists(ctx, email)
	if err != nil {
		return Account{}, err
	}
	if exists {
		return Account{}, apperr.NewFieldError("email", ErrMsgEmailExists)
	}

	if err := s.dir.Append(ctx, User{Email: email, Password: password}); err != nil {
		return Account{}, err
	}
	a := Account{Mode: ModeUser, Email: email, TS: s.now().UnixMilli()}
	return a, s.slot.Put(ctx, a, remember)
}

func (s *Service) Login(ctx context.Context, email, password string, remember bool) (Account, error) {
	if err := s.requireAnonymous(ctx); err != nil {
		return Account{}, err
	}
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	if !strings.Contains(email, "@") || len([]rune(password)) < MinPasswordLen {
		return Account{}, apperr.NewInvalidArgument(ErrMsgInvalidLogin)
	}
	ok, err := s.dir.Match(ctx, email, password)
	if err != nil {
		return Account{}, err
	}
	if !ok {
		return Account{}, apperr.NewUnauthenticated(ErrMsgWrongCredentials)
	}
	a := Account{Mode: ModeUser, Email: email, TS: s.now().UnixMilli()}
	return a, s.slot.Put(ctx, a, remember)
}

// Guest always succeeds for an anonymous visitor; guests never redeem coupons.
func (s *Service) Guest(ctx context.Context, remember bool) (Account, error) {
	if err := s.requireAnonymous(ctx); err != nil {
		return Account{}, err
	}
	a := Account{Mode: ModeGuest, TS: s.now().UnixMilli()}
	return a, s.slot.Put(ctx, a, remember)
}

// Logout clears both slots.
func (s *Service) Logout(ctx context.Context) error {
	return s.slot.Clear(ctx)
}

func (s *Service) requireAnonymous(ctx context.Context) error {
	a, err := s.Current(ctx)
	if err != nil {
		return err
	}
	if !a.IsAnonymous() {
		return apperr.NewFailedPrecondition(ErrMsgAlreadySignedIn)
	}
	return nil
}
