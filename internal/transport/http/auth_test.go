package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireUser(t *testing.T) {
	t.Parallel()

	auth := NewHeaderAuthorizer([]string{"admin-1"})
	var seenUser string
	handler := RequireUser(auth, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = userFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("anonymous is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("identified caller passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if seenUser != "user-1" {
			t.Fatalf("expected user-1 in context, got %q", seenUser)
		}
	})

	t.Run("blank header counts as anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("X-User-ID", "   ")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	auth := NewHeaderAuthorizer([]string{"admin-1", " admin-2 "})
	handler := RequireAdmin(auth, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		user     string
		expected int
	}{
		{name: "anonymous", user: "", expected: http.StatusUnauthorized},
		{name: "regular user", user: "user-1", expected: http.StatusForbidden},
		{name: "admin", user: "admin-1", expected: http.StatusNoContent},
		{name: "trimmed admin entry", user: "admin-2", expected: http.StatusNoContent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/trips/generate", nil)
			if tt.user != "" {
				req.Header.Set("X-User-ID", tt.user)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}
