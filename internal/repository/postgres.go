package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dataloft-systems/dataloft-backend/internal/lockout"
	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool configuration
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO users (id, username, email, password_hash, role, full_name, department, phone, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.Role, user.FullName, user.Department, user.Phone,
		user.IsActive, user.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `
	id, username, email, password_hash, role, full_name, department, phone,
	failed_login_attempts, account_locked_until, last_login, last_login_ip,
	is_active, created_at
`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.FullName, &user.Department, &user.Phone,
		&user.FailedLoginAttempts, &user.AccountLockedUntil,
		&user.LastLogin, &user.LastLoginIP,
		&user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// RecordLoginFailure increments the counter and sets the lock deadline in one
// statement, so concurrent failures against the same account serialize on the
// row instead of racing a read-modify-write.
func (r *PostgresRepository) RecordLoginFailure(ctx context.Context, userID string) (int, *time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    account_locked_until = CASE
		        WHEN failed_login_attempts + 1 >= $2 AND (account_locked_until IS NULL OR account_locked_until <= now())
		        THEN now() + make_interval(secs => $3)
		        ELSE account_locked_until
		    END
		WHERE id = $1
		RETURNING failed_login_attempts, account_locked_until
	`

	var attempts int
	var lockedUntil *time.Time
	err := r.pool.QueryRow(ctx, query, userID, lockout.MaxFailedAttempts, lockout.LockDuration.Seconds()).
		Scan(&attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, ErrUserNotFound
		}
		return 0, nil, fmt.Errorf("failed to record login failure: %w", err)
	}
	return attempts, lockedUntil, nil
}

func (r *PostgresRepository) SaveSecurityFields(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE users
		SET failed_login_attempts = $2, account_locked_until = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, user.ID, user.FailedLoginAttempts, user.AccountLockedUntil)
	if err != nil {
		return fmt.Errorf("failed to save security fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) SaveLastLogin(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE users
		SET last_login = $2, last_login_ip = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, user.ID, user.LastLogin, user.LastLoginIP)
	if err != nil {
		return fmt.Errorf("failed to save last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) RevokeToken(ctx context.Context, token *models.RevokedToken) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO revoked_tokens (token_digest, user_id, reason, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token_digest) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		token.TokenDigest, token.UserID, token.Reason, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked looks up a digest and lazily deletes entries whose token has
// already expired; those tokens are rejected by their own expiry check.
func (r *PostgresRepository) IsTokenRevoked(ctx context.Context, digest string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT expires_at FROM revoked_tokens WHERE token_digest = $1`

	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, query, digest).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	if !expiresAt.After(now) {
		_, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE token_digest = $1`, digest)
		if err != nil {
			return false, fmt.Errorf("failed to purge expired revocation: %w", err)
		}
		return false, nil
	}
	return true, nil
}

func (r *PostgresRepository) AppendAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal event details: %w", err)
	}

	query := `
		INSERT INTO auth_events (id, user_id, username_attempted, event_type, ip_address, user_agent, success, failure_reason, details, signature, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.pool.Exec(ctx, query,
		event.ID, event.UserID, event.UsernameAttempted, event.EventType,
		event.IPAddress, event.UserAgent, event.Success, event.FailureReason,
		details, event.Signature, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append auth event: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListAuthEventsByUsername(ctx context.Context, username string, limit, offset int) ([]*models.AuthEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, username_attempted, event_type, ip_address, user_agent, success, failure_reason, details, signature, created_at
		FROM auth_events
		WHERE ($1 = '' OR username_attempted = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, username, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.AuthEvent, 0)
	for rows.Next() {
		var event models.AuthEvent
		var details []byte
		err := rows.Scan(
			&event.ID, &event.UserID, &event.UsernameAttempted, &event.EventType,
			&event.IPAddress, &event.UserAgent, &event.Success, &event.FailureReason,
			&details, &event.Signature, &event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auth event: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event details: %w", err)
			}
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
