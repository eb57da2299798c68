package model

import "time"

// RecoveryToken represents a single-use password recovery token.
// Tokens are invalidated when consumed, when they expire, or when a newer
// token is issued for the same user.
type RecoveryToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresOn time.Time `json:"expires_on"`
	Used      bool      `json:"used"`
	CreatedOn time.Time `json:"created_on"`
}

// IsLive returns true if the token can still be redeemed
func (t *RecoveryToken) IsLive(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresOn)
}
