package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func securityHeaders(dev bool) http.Header {
	handler := Security(SecurityConfig{IsDevelopment: dev})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tags", nil))
	return rec.Header()
}

func TestSecurity(t *testing.T) {
	prod := securityHeaders(false)
	for _, hdr := range apiHeaders {
		if got := prod.Get(hdr.name); got != hdr.value {
			t.Errorf("expected %s %q, got %q", hdr.name, hdr.value, got)
		}
	}
	if got := prod.Get("Strict-Transport-Security"); got != hstsValue {
		t.Errorf("expected HSTS in production, got %q", got)
	}

	dev := securityHeaders(true)
	if got := dev.Get("Strict-Transport-Security"); got != "" {
		t.Errorf("expected no HSTS in development, got %q", got)
	}
	if dev.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected the API headers in development too")
	}

	// A production handler must not leak HSTS into the shared table.
	if len(apiHeaders) > 0 && apiHeaders[len(apiHeaders)-1].name == "Strict-Transport-Security" {
		t.Error("apiHeaders was mutated")
	}
}

func TestMaxBodySize(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		contentLength int64
		wantStatus    int
	}{
		{"small body", `{"name":"salt"}`, 15, http.StatusOK},
		{"declared length too large", strings.Repeat("x", 64), 64, http.StatusRequestEntityTooLarge},
		{"streamed body too large", strings.Repeat("x", 64), -1, http.StatusRequestEntityTooLarge},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := MaxBodySize(32)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, err := io.ReadAll(r.Body); err != nil {
					var maxErr *http.MaxBytesError
					if errors.As(err, &maxErr) {
						w.WriteHeader(http.StatusRequestEntityTooLarge)
						return
					}
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/ingredients", strings.NewReader(test.body))
			req.ContentLength = test.contentLength
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != test.wantStatus {
				t.Fatalf("expected status %d, got %d", test.wantStatus, rec.Code)
			}
		})
	}
}
