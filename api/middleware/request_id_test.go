package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID_KeepsValidClientID(t *testing.T) {
	sent := uuid.NewString()
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("X-Request-Id", sent)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != sent {
		t.Fatalf("expected client id %s echoed back, got %s", sent, got)
	}
}

func TestRequestID_ReplacesInvalidClientID(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, sent := range []string{"", "not-a-uuid", "12345"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		if sent != "" {
			req.Header.Set("X-Request-Id", sent)
		}
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		got := rec.Header().Get("X-Request-Id")
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("expected a fresh uuid for %q, got %q", sent, got)
		}
		if got == sent {
			t.Fatalf("expected %q to be replaced", sent)
		}
	}
}
