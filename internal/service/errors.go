package service

import "net/http"

// Error codes returned to clients in the error envelope.
const (
	CodeInvalidCredentials = "AUTH-001"
	CodeInactiveAccount    = "AUTH-002"
	CodeAccountLocked      = "AUTH-003"
	CodeLogoutFailed       = "AUTH-004"
	CodeTokenRevoked       = "AUTH-005"
	CodeRefreshFailed      = "AUTH-006"
)

// AuthError is a business-rule failure with a stable code and a message safe
// to show to clients.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Code + ": " + e.Message
}

// HTTPStatus maps the error code to the status the HTTP surface returns.
func (e *AuthError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidCredentials, CodeTokenRevoked:
		return http.StatusUnauthorized
	case CodeInactiveAccount, CodeAccountLocked:
		return http.StatusForbidden
	case CodeLogoutFailed, CodeRefreshFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func newAuthError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}
