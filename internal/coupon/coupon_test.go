package coupon

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-heritage-shop.git/internal/account"
	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(kv.NewMemory())

	code, err := l.CurrentCode(ctx)
	require.NoError(t, err)
	assert.Empty(t, code)

	require.NoError(t, l.SetCode(ctx, "  welcome10 "))
	code, err = l.CurrentCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", code)

	require.NoError(t, l.SetCode(ctx, "does-not-exist"))
	code, _ = l.CurrentCode(ctx)
	assert.Equal(t, "DOES-NOT-EXIST", code, "unknown codes are stored too")
}

func TestPolicy_Eligible(t *testing.T) {
	anon := account.Account{}
	guest := account.Account{Mode: account.ModeGuest}
	user := account.Account{Mode: account.ModeUser, Email: "a@b.de"}

	assert.False(t, Gated.Eligible(anon))
	assert.False(t, Gated.Eligible(guest))
	assert.True(t, Gated.Eligible(user))

	assert.True(t, Open.Eligible(anon))
	assert.True(t, Open.Eligible(guest))
	assert.True(t, Open.Eligible(user))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Gated, p)

	p, err = ParsePolicy(" OPEN ")
	require.NoError(t, err)
	assert.Equal(t, Open, p)
	assert.Equal(t, "open", p.String())

	_, err = ParsePolicy("sometimes")
	assert.Error(t, err)
}
