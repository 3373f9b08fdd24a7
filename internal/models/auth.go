package models

import "time"

// Revocation reasons.
const (
	RevokeReasonLogout         = "logout"
	RevokeReasonPasswordChange = "password_change"
	RevokeReasonSecurity       = "security"
	RevokeReasonAdminRevoke    = "admin_revoke"
)

// RevokedToken marks a refresh token as unusable until its natural expiry.
// TokenDigest is the SHA-256 hex of the raw token string, so a token can be
// checked against the store without parsing or trusting its contents.
// Records are created once and never updated; an expired record is dead
// weight and may be purged lazily on lookup.
type RevokedToken struct {
	TokenDigest string    `json:"token_digest"`
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expired reports whether the revocation record has outlived the token it
// covers.
func (rt *RevokedToken) Expired(now time.Time) bool {
	return !now.Before(rt.ExpiresAt)
}

// Authentication event types.
const (
	EventLoginSuccess  = "login_success"
	EventLoginFailed   = "login_failed"
	EventLogout        = "logout"
	EventTokenRefresh  = "token_refresh"
	EventAccountLocked = "account_locked"
)

// AuthEvent is an append-only security audit record. UserID is nil when the
// attempted username does not resolve to an account. Signature is an
// HMAC-SHA256 over the stable fields, making tampering detectable.
type AuthEvent struct {
	ID                string                 `json:"id"`
	UserID            *string                `json:"user_id,omitempty"`
	UsernameAttempted string                 `json:"username_attempted"`
	EventType         string                 `json:"event_type"`
	IPAddress         string                 `json:"ip_address"`
	UserAgent         string                 `json:"user_agent,omitempty"`
	Success           bool                   `json:"success"`
	FailureReason     string                 `json:"failure_reason,omitempty"`
	Details           map[string]interface{} `json:"details,omitempty"`
	Signature         string                 `json:"signature"`
	CreatedAt         time.Time              `json:"created_at"`
}
