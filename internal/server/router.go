package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dataloft-systems/dataloft-backend/internal/handlers"
	authmw "github.com/dataloft-systems/dataloft-backend/internal/middleware"
	"github.com/dataloft-systems/dataloft-backend/pkg/middleware"
)

// NewRouter constructs a ServeMux with the auth API routes registered.
func NewRouter(h *handlers.AuthHandler, auth *authmw.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	// Authentication endpoints
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.RequireAuth(h.Logout))
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Refresh)

	// Audit trail, admin only
	mux.HandleFunc("GET /api/v1/auth/events", auth.RequireAdmin(h.ListEvents))

	// Operational endpoints
	mux.HandleFunc("GET /healthz", h.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
