package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventCartChanged       = "CartChanged"
	EventAccountRegistered = "AccountRegistered"
	EventCheckoutRequested = "CheckoutRequested"
	EventCheckoutAccepted  = "CheckoutAccepted"
	EventCheckoutRejected  = "CheckoutRejected"

	Version = 1
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "shop-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // profile id atau checkout id
	Payload       json.RawMessage `json:"payload"`
}

// New wraps payload in a v1 envelope with a fresh event id.
func New(eventType, producer, traceID, correlationID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  Version,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

// ---- Payload tipe per event ----

type LineQty struct {
	ProductID string `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

type CartChangedPayload struct {
	ProfileID string    `json:"profile_id"`
	Action    string    `json:"action"` // add | set_quantity | remove | clear
	Count     int       `json:"count"`
	Lines     []LineQty `json:"lines"`
}

type AccountRegisteredPayload struct {
	ProfileID  string `json:"profile_id"`
	Email      string `json:"email"`
	CouponCode string `json:"coupon_code"`
}

type CheckoutRequestedPayload struct {
	CheckoutID string          `json:"checkout_id"`
	ProfileID  string          `json:"profile_id"`
	Email      string          `json:"email"`
	Method     string          `json:"method"`
	Lines      []LineQty       `json:"lines"`
	Code       string          `json:"code,omitempty"`
	Currency   string          `json:"currency"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
}

type CheckoutAcceptedPayload struct {
	CheckoutID string          `json:"checkout_id"`
	ProfileID  string          `json:"profile_id"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
}

type CheckoutRejectedPayload struct {
	CheckoutID string          `json:"checkout_id"`
	ProfileID  string          `json:"profile_id"`
	Reason     string          `json:"reason"` // PRICE_MISMATCH | EMPTY_CART
	Expected   decimal.Decimal `json:"expected"`
	Submitted  decimal.Decimal `json:"submitted"`
}
