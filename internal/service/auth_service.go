// Package service composes the credential store, lockout policy, token
// codec, revocation store and audit logger into the login, logout and
// refresh use cases.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dataloft-systems/dataloft-backend/internal/audit"
	"github.com/dataloft-systems/dataloft-backend/internal/lockout"
	"github.com/dataloft-systems/dataloft-backend/internal/metrics"
	"github.com/dataloft-systems/dataloft-backend/internal/models"
	"github.com/dataloft-systems/dataloft-backend/internal/repository"
	"github.com/dataloft-systems/dataloft-backend/pkg/tokens"
)

type AuthService struct {
	repo        repository.Repository
	revocations repository.RevocationStore
	events      repository.AuditStore
	codec       *tokens.Codec
	auditLog    *audit.Logger
	now         func() time.Time
}

func NewAuthService(repo repository.Repository, revocations repository.RevocationStore, events repository.AuditStore, codec *tokens.Codec, auditLog *audit.Logger) *AuthService {
	return &AuthService{
		repo:        repo,
		revocations: revocations,
		events:      events,
		codec:       codec,
		auditLog:    auditLog,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies credentials and mints a token pair. Every attempt, success
// or failure, writes exactly one audit record; if that write fails the
// attempt fails with it.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	now := s.now()

	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		// Same message as a bad password so usernames cannot be probed.
		if err := s.auditLog.Record(ctx, audit.Entry{
			UsernameAttempted: req.Username,
			EventType:         models.EventLoginFailed,
			IPAddress:         req.IPAddress,
			UserAgent:         req.UserAgent,
			Success:           false,
			FailureReason:     "Invalid username",
		}); err != nil {
			return nil, err
		}
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, newAuthError(CodeInvalidCredentials, "Invalid credentials")
	}

	locked, lapsed := lockout.IsLocked(user, now)
	if lapsed {
		if err := s.repo.SaveSecurityFields(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to clear lapsed lock: %w", err)
		}
	}
	if locked {
		unlockAt := user.AccountLockedUntil
		if err := s.auditLog.Record(ctx, audit.Entry{
			UserID:            &user.ID,
			UsernameAttempted: req.Username,
			EventType:         models.EventLoginFailed,
			IPAddress:         req.IPAddress,
			UserAgent:         req.UserAgent,
			Success:           false,
			FailureReason:     "Account locked",
		}); err != nil {
			return nil, err
		}
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, newAuthError(CodeAccountLocked,
			fmt.Sprintf("Account is locked. Try again after %s", unlockAt.Format("15:04")))
	}

	if !user.IsActive {
		if err := s.auditLog.Record(ctx, audit.Entry{
			UserID:            &user.ID,
			UsernameAttempted: req.Username,
			EventType:         models.EventLoginFailed,
			IPAddress:         req.IPAddress,
			UserAgent:         req.UserAgent,
			Success:           false,
			FailureReason:     "Account inactive",
		}); err != nil {
			return nil, err
		}
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, newAuthError(CodeInactiveAccount, "Account is inactive. Please contact administrator.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		// The counter update happens before the audit write so the trail
		// never shows an attempt whose counter mutation was lost.
		attempts, lockedUntil, err := s.repo.RecordLoginFailure(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to record login failure: %w", err)
		}

		if err := s.auditLog.Record(ctx, audit.Entry{
			UserID:            &user.ID,
			UsernameAttempted: req.Username,
			EventType:         models.EventLoginFailed,
			IPAddress:         req.IPAddress,
			UserAgent:         req.UserAgent,
			Success:           false,
			FailureReason:     "Invalid password",
			Details:           map[string]interface{}{"failed_attempts": attempts},
		}); err != nil {
			return nil, err
		}
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()

		if lockedUntil != nil && lockedUntil.After(now) {
			metrics.AccountLockoutsTotal.Inc()
			return nil, newAuthError(CodeAccountLocked, "Too many failed attempts. Account locked for 15 minutes.")
		}
		return nil, newAuthError(CodeInvalidCredentials, "Invalid credentials")
	}

	lockout.RecordSuccess(user)
	if err := s.repo.SaveSecurityFields(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to reset security fields: %w", err)
	}

	user.LastLogin = &now
	user.LastLoginIP = &req.IPAddress
	if err := s.repo.SaveLastLogin(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save last login: %w", err)
	}

	accessToken, err := s.codec.IssueAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.codec.IssueRefreshToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.auditLog.Record(ctx, audit.Entry{
		UserID:            &user.ID,
		UsernameAttempted: req.Username,
		EventType:         models.EventLoginSuccess,
		IPAddress:         req.IPAddress,
		UserAgent:         req.UserAgent,
		Success:           true,
	}); err != nil {
		return nil, err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.ToResponse(),
	}, nil
}

// Logout revokes the presented refresh token. The token is parsed only to
// read its expiry, which bounds how long the revocation record must live.
func (s *AuthService) Logout(ctx context.Context, user *models.User, refreshToken, ipAddress, userAgent string) (*models.LogoutResponse, error) {
	claims, err := s.codec.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, newAuthError(CodeLogoutFailed, "Invalid token")
	}

	revoked := &models.RevokedToken{
		TokenDigest: tokens.Digest(refreshToken),
		UserID:      user.ID,
		Reason:      models.RevokeReasonLogout,
		ExpiresAt:   claims.ExpiresAt.Time,
		CreatedAt:   s.now(),
	}
	if err := s.revocations.RevokeToken(ctx, revoked); err != nil {
		return nil, fmt.Errorf("failed to revoke token: %w", err)
	}

	if err := s.auditLog.Record(ctx, audit.Entry{
		UserID:            &user.ID,
		UsernameAttempted: user.Username,
		EventType:         models.EventLogout,
		IPAddress:         ipAddress,
		UserAgent:         userAgent,
		Success:           true,
	}); err != nil {
		return nil, err
	}
	metrics.LogoutsTotal.Inc()

	return &models.LogoutResponse{Message: "Logged out successfully"}, nil
}

// RefreshAccessToken mints a new access token from a refresh token. The
// revocation lookup runs before any parsing, so a revoked token is rejected
// without trusting anything inside it.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*models.RefreshResponse, error) {
	revoked, err := s.revocations.IsTokenRevoked(ctx, tokens.Digest(refreshToken), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		metrics.RevokedTokenRejectionsTotal.Inc()
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return nil, newAuthError(CodeTokenRevoked, "Token has been revoked")
	}

	claims, err := s.codec.ParseRefreshToken(refreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return nil, newAuthError(CodeRefreshFailed, "Invalid token")
	}

	accessToken, err := s.codec.IssueAccessToken(claims.Subject, claims.Username, claims.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()

	return &models.RefreshResponse{AccessToken: accessToken}, nil
}

// ListAuthEvents returns audit records newest first, optionally filtered by
// attempted username.
func (s *AuthService) ListAuthEvents(ctx context.Context, username string, limit, offset int) ([]*models.AuthEvent, error) {
	events, err := s.events.ListAuthEventsByUsername(ctx, username, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth events: %w", err)
	}
	return events, nil
}
