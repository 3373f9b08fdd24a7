package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrTokenNotFound = errors.New("token not found")
)

// Repository is the persistence surface for user accounts and their security
// state. The login failure counter is updated through RecordLoginFailure so
// the increment-and-maybe-lock step is a single atomic operation per backend.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// RecordLoginFailure increments the user's failed attempt counter and,
	// when the counter reaches the lockout threshold, sets the lock deadline.
	// It returns the counter value and lock deadline after the update.
	RecordLoginFailure(ctx context.Context, userID string) (int, *time.Time, error)

	// SaveSecurityFields persists failed_login_attempts and
	// account_locked_until as currently set on the user.
	SaveSecurityFields(ctx context.Context, user *models.User) error

	// SaveLastLogin persists last_login and last_login_ip.
	SaveLastLogin(ctx context.Context, user *models.User) error
}

// RevocationStore tracks tokens invalidated before their natural expiry.
// Lookups are keyed by token digest so a check never requires parsing.
type RevocationStore interface {
	RevokeToken(ctx context.Context, token *models.RevokedToken) error
	IsTokenRevoked(ctx context.Context, digest string, now time.Time) (bool, error)
}

// AuditStore is the append-only log of authentication events.
type AuditStore interface {
	AppendAuthEvent(ctx context.Context, event *models.AuthEvent) error
	// ListAuthEventsByUsername returns events for the attempted username,
	// newest first. An empty username returns all events.
	ListAuthEventsByUsername(ctx context.Context, username string, limit, offset int) ([]*models.AuthEvent, error)
}
