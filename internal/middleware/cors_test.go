package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func corsRequest(t *testing.T, origins []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = origins
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/api/recipes/download_shopping_cart", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	const site = "https://foodgram.example"

	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"nothing configured", nil, http.MethodGet, site, http.StatusOK, ""},
		{"allowed origin", []string{site}, http.MethodGet, site, http.StatusOK, site},
		{"foreign origin", []string{site}, http.MethodGet, "https://evil.example", http.StatusOK, ""},
		{"configured in upper case", []string{strings.ToUpper(site)}, http.MethodGet, site, http.StatusOK, site},
		{"preflight", []string{site}, http.MethodOptions, site, http.StatusNoContent, site},
		{"no origin header", []string{site}, http.MethodGet, "", http.StatusOK, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := corsRequest(t, test.origins, test.method, test.origin)

			if rec.Code != test.wantStatus {
				t.Fatalf("expected status %d, got %d", test.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != test.wantAllow {
				t.Fatalf("expected Access-Control-Allow-Origin %q, got %q", test.wantAllow, got)
			}
		})
	}
}

func TestCORS_ExposesDownloadHeaders(t *testing.T) {
	rec := corsRequest(t, []string{"https://foodgram.example"}, http.MethodGet, "https://foodgram.example")

	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"Content-Disposition", "X-Request-Id"} {
		if !strings.Contains(strings.ToLower(exposed), strings.ToLower(h)) {
			t.Errorf("expected %s in exposed headers, got %q", h, exposed)
		}
	}
}
