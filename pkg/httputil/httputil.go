// Package httputil holds the small HTTP plumbing shared by handlers: JSON
// response writing, client-IP extraction behind proxies, and pagination
// parsing.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// WriteError writes a bare JSON error message. Handlers with a richer error
// envelope should build it themselves and use WriteJSON.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// GetClientIP extracts the originating client IP, preferring proxy headers:
// first entry of X-Forwarded-For, then X-Real-IP, then RemoteAddr with any
// port stripped.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 && !strings.Contains(addr[idx:], "]") {
		addr = addr[:idx]
	}
	return strings.Trim(addr, "[]")
}

// Pagination holds common query-string paging parameters.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ParsePagination reads page/limit from the query string, applying the
// default and clamping at the maximum to keep queries bounded.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	page := parseIntParam(r.URL.Query().Get("page"), 1)
	limit := parseIntParam(r.URL.Query().Get("limit"), defaultLimit)

	if limit > maxLimit {
		limit = maxLimit
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if page < 1 {
		page = 1
	}

	return Pagination{Page: page, Limit: limit}
}

// Offset returns the row offset for SQL OFFSET clauses.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return defaultVal
}
