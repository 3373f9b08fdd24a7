package models

import (
	"fmt"
	"regexp"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const (
	usernameMinLen = 3
	usernameMaxLen = 30
	passwordMinLen = 8
	passwordMaxLen = 128
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Optional overrides for audit logging; when absent the handler derives
	// them from the connection and the User-Agent header.
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Validate checks field shape and length before any business logic runs.
// It returns a map keyed by field name; an empty map means the request is
// well formed. Validation failures are never audited.
func (r *LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)

	switch {
	case r.Username == "":
		errs["username"] = "username is required"
	case len(r.Username) < usernameMinLen || len(r.Username) > usernameMaxLen:
		errs["username"] = fmt.Sprintf("username must be %d-%d characters", usernameMinLen, usernameMaxLen)
	case !usernamePattern.MatchString(r.Username):
		errs["username"] = "username must contain only alphanumeric characters and underscores"
	}

	switch {
	case r.Password == "":
		errs["password"] = "password is required"
	case len(r.Password) < passwordMinLen || len(r.Password) > passwordMaxLen:
		errs["password"] = fmt.Sprintf("password must be %d-%d characters", passwordMinLen, passwordMaxLen)
	}

	return errs
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *LogoutRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.RefreshToken == "" {
		errs["refresh_token"] = "refresh_token is required"
	}
	return errs
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.RefreshToken == "" {
		errs["refresh_token"] = "refresh_token is required"
	}
	return errs
}

type LoginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *UserResponse `json:"user"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
