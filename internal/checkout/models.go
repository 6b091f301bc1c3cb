package checkout

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodPayPal Method = "paypal"
	MethodCard   Method = "card"
	MethodKlarna Method = "klarna"
)

// ParseMethod maps user input to a payment method; blank means PayPal.
func ParseMethod(s string) (Method, bool) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodPayPal, true
	case MethodPayPal, MethodCard, MethodKlarna:
		return m, true
	default:
		return "", false
	}
}

type Checkout struct {
	ID        string
	ProfileID string
	Email     string
	Method    Method
	Currency  string
	Code      string
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Status    Status // lihat status.go
	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
