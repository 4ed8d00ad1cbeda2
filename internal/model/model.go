package model

import "time"

// UsageRecord tracks per-user form creation counts and billing entitlement.
// One record per distinct Google account email; created lazily on the first
// form creation and never deleted.
type UsageRecord struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	UsageCount         int64     `json:"usage_count"`
	HasPaid            bool      `json:"has_paid"`
	StripeCustomerID   *string   `json:"stripe_customer_id"`
	SubscriptionStatus *string   `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Entitled reports whether the record carries an active paid subscription.
func (u *UsageRecord) Entitled() bool {
	if u.HasPaid {
		return true
	}
	return u.SubscriptionStatus != nil && *u.SubscriptionStatus == "active"
}

// TokenRecord holds Google OAuth credentials for a caller-supplied user id.
// Only used when the relay runs in stored token delivery mode; the newest
// record for a user id is authoritative.
type TokenRecord struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the access token's expiry has passed.
func (t *TokenRecord) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
