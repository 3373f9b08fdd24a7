package models

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleViewer:
		return true
	}
	return false
}

// User is a dashboard account with its brute-force protection state.
// Security fields (FailedLoginAttempts, AccountLockedUntil) are mutated only
// through the repository so counter updates stay serialized per user.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	FullName     string `json:"full_name"`
	Department   string `json:"department"`
	Phone        string `json:"phone,omitempty"`

	FailedLoginAttempts int        `json:"-"`
	AccountLockedUntil  *time.Time `json:"-"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	LastLoginIP         *string    `json:"last_login_ip,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserResponse is the sanitized projection returned by the API.
// It never carries the password hash or security counters.
type UserResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		FullName:   u.FullName,
		Department: u.Department,
	}
}
