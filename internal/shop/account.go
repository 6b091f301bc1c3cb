package shop

import (
	"context"

	"github.com/ariefcatur/go-heritage-shop.git/internal/address"
	"github.com/ariefcatur/go-heritage-shop.git/internal/coupon"
	"github.com/ariefcatur/go-heritage-shop.git/internal/events"
	"go.uber.org/zap"
)

// Register creates a registered account and puts the welcome code into the
// ledger; registering is what unlocks the discount.
func (ss *Session) Register(ctx context.Context, email, password, confirm string, remember bool) (Result, error) {
	a, err := ss.accounts.Register(ctx, email, password, confirm, remember)
	if err != nil {
		return ss.finish(ctx, "", err)
	}
	if err := ss.ledger.SetCode(ctx, coupon.WelcomeCode); err != nil {
		return Result{}, err
	}
	ss.log.Info("account registered", zap.Bool("remember", remember))
	ss.emit(events.EventAccountRegistered, ss.profileID, events.AccountRegisteredPayload{
		ProfileID:  ss.profileID,
		Email:      a.Email,
		CouponCode: coupon.WelcomeCode,
	})
	return ss.finish(ctx, MsgRegistered, nil)
}

func (ss *Session) Login(ctx context.Context, email, password string, remember bool) (Result, error) {
	_, err := ss.accounts.Login(ctx, email, password, remember)
	return ss.finish(ctx, MsgLoggedIn, err)
}

func (ss *Session) Guest(ctx context.Context, remember bool) (Result, error) {
	_, err := ss.accounts.Guest(ctx, remember)
	return ss.finish(ctx, MsgGuest, err)
}

func (ss *Session) Logout(ctx context.Context) (Result, error) {
	if err := ss.accounts.Logout(ctx); err != nil {
		return Result{}, err
	}
	return ss.finish(ctx, MsgLoggedOut, nil)
}

func (ss *Session) SaveAddress(ctx context.Context, a address.Address, remember bool) (Result, error) {
	_, err := ss.address.Save(ctx, a, remember)
	return ss.finish(ctx, MsgAddressSaved, err)
}

func (ss *Session) SetConsent(ctx context.Context, accept bool) (Result, error) {
	if err := ss.flags.SetConsent(ctx, accept); err != nil {
		return Result{}, err
	}
	if accept {
		return ss.finish(ctx, MsgConsentAll, nil)
	}
	return ss.finish(ctx, MsgConsentNecessary, nil)
}

func (ss *Session) DismissWelcome(ctx context.Context) (Result, error) {
	if err := ss.flags.DismissWelcome(ctx); err != nil {
		return Result{}, err
	}
	return ss.finish(ctx, "", nil)
}

func (ss *Session) DismissDailyOffer(ctx context.Context) (Result, error) {
	if err := ss.flags.DismissDailyOffer(ctx); err != nil {
		return Result{}, err
	}
	return ss.finish(ctx, "", nil)
}
