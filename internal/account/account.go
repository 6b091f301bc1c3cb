package account

import "time"

const (
	SessionKey = "shop_user_v1_session"
	PersistKey = "shop_user_v1_persist"
	UsersKey   = "shop_users_db_v1"

	MinPasswordLen = 4
)

type Mode string

const (
	ModeAnonymous Mode = ""
	ModeGuest     Mode = "guest"
	ModeUser      Mode = "user" // registered
)

// Account is the active visitor identity. The zero value is the anonymous visitor.
type Account struct {
	Mode  Mode   `json:"mode"`
	Email string `json:"email,omitempty"`
	TS    int64  `json:"ts,omitempty"` // unix millis of login/registration
}

func (a Account) IsAnonymous() bool  { return a.Mode == ModeAnonymous }
func (a Account) IsGuest() bool      { return a.Mode == ModeGuest }
func (a Account) IsRegistered() bool { return a.Mode == ModeUser }

func (a Account) CreatedAt() time.Time {
	if a.TS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(a.TS).UTC()
}

// User is an entry in the local users directory.
type User struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
