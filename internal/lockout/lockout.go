// Package lockout implements the brute-force lockout state machine for user
// accounts. An account is Unlocked while account_locked_until is unset and
// Locked while it points into the future. The transitions here are pure
// functions over the User value; callers persist the mutated fields.
package lockout

import (
	"time"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

// Policy constants. These are fixed security policy, not configuration.
const (
	// MaxFailedAttempts is the number of consecutive failures that locks an
	// account.
	MaxFailedAttempts = 5

	// LockDuration is how long a lock holds once entered.
	LockDuration = 15 * time.Minute
)

// RecordFailure increments the failed-attempt counter and, when the counter
// reaches the threshold, enters the Locked state. It reports whether this
// call caused the lock transition.
func RecordFailure(u *models.User, now time.Time) bool {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedAttempts && u.AccountLockedUntil == nil {
		until := now.Add(LockDuration)
		u.AccountLockedUntil = &until
		return true
	}
	return false
}

// RecordSuccess forces the Unlocked state: the counter resets to zero and
// any pending lock is cleared.
func RecordSuccess(u *models.User) {
	u.FailedLoginAttempts = 0
	u.AccountLockedUntil = nil
}

// IsLocked evaluates the lock state at the given instant. A lock whose
// deadline has passed is lapsed: both security fields are cleared on the
// value and lapsed is reported true so the caller can persist the reset.
func IsLocked(u *models.User, now time.Time) (locked, lapsed bool) {
	if u.AccountLockedUntil == nil {
		return false, false
	}
	if !now.Before(*u.AccountLockedUntil) {
		u.AccountLockedUntil = nil
		u.FailedLoginAttempts = 0
		return false, true
	}
	return true, false
}
