package redisx

import (
	"fmt"
	"time"
)

const (
	// State sesi pengunjung: session:{session_id}:{storage_key}
	KeySession = "session:%s:"

	// Cache status checkout: checkout_status:{checkout_id} -> {"status": "...", "reason": "..."}
	KeyCheckoutStatus = "checkout_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)

// SessionPrefix is the key prefix of one session's state.
func SessionPrefix(sessionID string) string { return fmt.Sprintf(KeySession, sessionID) }
