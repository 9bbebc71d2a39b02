package models

import "time"

// User is the entitlement row for a wallet address.
//
// IsPremium is advisory: the flag is never cleared when PremiumUntil passes,
// so readers must go through PremiumActive.
type User struct {
	Address      string     `json:"address"` // lowercase hex
	IsPremium    bool       `json:"is_premium"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PremiumActive reports the effective entitlement at now.
func (u *User) PremiumActive(now time.Time) bool {
	if u == nil || !u.IsPremium || u.PremiumUntil == nil {
		return false
	}
	return !now.After(*u.PremiumUntil)
}
