package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dataloft-systems/dataloft-backend/internal/middleware"
	"github.com/dataloft-systems/dataloft-backend/internal/models"
	"github.com/dataloft-systems/dataloft-backend/internal/service"
	"github.com/dataloft-systems/dataloft-backend/pkg/httputil"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// errorEnvelope is the business-rule failure body.
type errorEnvelope struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func writeServiceError(w http.ResponseWriter, err error) {
	var ae *service.AuthError
	if errors.As(err, &ae) {
		httputil.WriteJSON(w, ae.HTTPStatus(), errorEnvelope{
			Success:   false,
			ErrorCode: ae.Code,
			Message:   ae.Message,
		})
		return
	}
	httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
}

func writeValidationErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	httputil.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fieldErrors})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	// Clients may supply origin details; otherwise derive them.
	if req.IPAddress == "" {
		req.IPAddress = httputil.GetClientIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.Header.Get("User-Agent")
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	user := &models.User{ID: claims.Subject, Username: claims.Username}
	resp, err := h.service.Logout(r.Context(), user, req.RefreshToken,
		httputil.GetClientIP(r), r.Header.Get("User-Agent"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	resp, err := h.service.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ListEvents returns the audit trail newest first, optionally filtered by
// attempted username. Admin only; enforced by the router.
func (h *AuthHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r, 50, 200)
	username := r.URL.Query().Get("username")

	events, err := h.service.ListAuthEvents(r.Context(), username, page.Limit, page.Offset())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"page":   page.Page,
		"limit":  page.Limit,
	})
}

func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
