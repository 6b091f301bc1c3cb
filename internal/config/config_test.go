package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "KAFKA_BROKERS", "COUPON_POLICY", "SESSION_TTL", "CHECKOUT_WORKERS", "SECURE_COOKIES"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "gated", cfg.CouponPolicy)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 4, cfg.CheckoutWorkers)
	assert.False(t, cfg.SecureCookies)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("COUPON_POLICY", "OPEN")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CHECKOUT_WORKERS", "-3")
	t.Setenv("SECURE_COOKIES", "true")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "open", cfg.CouponPolicy)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 4, cfg.CheckoutWorkers, "non-positive worker count falls back to default")
	assert.True(t, cfg.SecureCookies)
}
