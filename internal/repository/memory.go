package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dataloft-systems/dataloft-backend/internal/lockout"
	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

// InMemoryRepository keeps all state in process. It backs development and
// tests; it also implements RevocationStore and AuditStore so a single
// instance can serve as every store the auth service needs.
type InMemoryRepository struct {
	users       map[string]*models.User
	usersByName map[string]*models.User
	revoked     map[string]*models.RevokedToken
	events      []*models.AuthEvent
	mu          sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:       make(map[string]*models.User),
		usersByName: make(map[string]*models.User),
		revoked:     make(map[string]*models.RevokedToken),
	}
}

func (r *InMemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByName[user.Username]; exists {
		return ErrUserExists
	}

	r.users[user.ID] = user
	r.usersByName[user.Username] = user
	return nil
}

func (r *InMemoryRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.usersByName[username]
	if !exists {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *InMemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *InMemoryRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		users = append(users, &copied)
	}
	return users, nil
}

// RecordLoginFailure applies the increment under the write lock so two
// concurrent failures for the same account cannot both observe the same
// counter value.
func (r *InMemoryRepository) RecordLoginFailure(ctx context.Context, userID string) (int, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return 0, nil, ErrUserNotFound
	}

	lockout.RecordFailure(user, time.Now().UTC())
	return user.FailedLoginAttempts, user.AccountLockedUntil, nil
}

func (r *InMemoryRepository) SaveSecurityFields(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.users[user.ID]
	if !exists {
		return ErrUserNotFound
	}

	stored.FailedLoginAttempts = user.FailedLoginAttempts
	stored.AccountLockedUntil = user.AccountLockedUntil
	return nil
}

func (r *InMemoryRepository) SaveLastLogin(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.users[user.ID]
	if !exists {
		return ErrUserNotFound
	}

	stored.LastLogin = user.LastLogin
	stored.LastLoginIP = user.LastLoginIP
	return nil
}

func (r *InMemoryRepository) RevokeToken(ctx context.Context, token *models.RevokedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revoked[token.TokenDigest] = token
	return nil
}

// IsTokenRevoked reports whether the digest is blacklisted. Entries whose
// underlying token has expired are dropped on lookup; an expired entry no
// longer needs tracking because the token fails its own expiry check.
func (r *InMemoryRepository) IsTokenRevoked(ctx context.Context, digest string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.revoked[digest]
	if !exists {
		return false, nil
	}
	if entry.Expired(now) {
		delete(r.revoked, digest)
		return false, nil
	}
	return true, nil
}

func (r *InMemoryRepository) AppendAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return nil
}

func (r *InMemoryRepository) ListAuthEventsByUsername(ctx context.Context, username string, limit, offset int) ([]*models.AuthEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Newest first: walk the append-only slice backwards.
	matched := make([]*models.AuthEvent, 0)
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if username != "" && e.UsernameAttempted != username {
			continue
		}
		matched = append(matched, e)
	}

	if offset >= len(matched) {
		return []*models.AuthEvent{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}
