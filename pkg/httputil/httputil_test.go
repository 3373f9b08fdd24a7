package httputil

import (
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{name: "remote addr with port", remoteAddr: "203.0.113.9:54123", want: "203.0.113.9"},
		{name: "x-forwarded-for single", remoteAddr: "10.0.0.1:1", xff: "198.51.100.7", want: "198.51.100.7"},
		{name: "x-forwarded-for chain", remoteAddr: "10.0.0.1:1", xff: "198.51.100.7, 10.0.0.2", want: "198.51.100.7"},
		{name: "x-real-ip fallback", remoteAddr: "10.0.0.1:1", xri: "198.51.100.8", want: "198.51.100.8"},
		{name: "xff wins over xri", remoteAddr: "10.0.0.1:1", xff: "198.51.100.7", xri: "198.51.100.8", want: "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", query: "", wantPage: 1, wantLimit: 50},
		{name: "explicit", query: "?page=3&limit=20", wantPage: 3, wantLimit: 20},
		{name: "clamped to max", query: "?limit=5000", wantPage: 1, wantLimit: 200},
		{name: "negative page", query: "?page=-2", wantPage: 1, wantLimit: 50},
		{name: "garbage values", query: "?page=x&limit=y", wantPage: 1, wantLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/"+tt.query, nil)
			p := ParsePagination(r, 50, 200)
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit {
				t.Errorf("ParsePagination() = %+v, want page=%d limit=%d", p, tt.wantPage, tt.wantLimit)
			}
		})
	}

	t.Run("offset", func(t *testing.T) {
		p := Pagination{Page: 3, Limit: 25}
		if p.Offset() != 50 {
			t.Errorf("Offset() = %d, want 50", p.Offset())
		}
	})
}
