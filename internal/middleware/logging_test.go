package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func logRequest(t *testing.T, h http.Handler, req *http.Request) string {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	Logger(logger)(h).ServeHTTP(httptest.NewRecorder(), req)
	return buf.String()
}

func TestLogging_NeverLogsCredentials(t *testing.T) {
	t.Parallel()

	const key = "fg_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b"

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("X-API-Key", key)

	out := logRequest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), req)

	for _, pattern := range []string{key, "fg_live_", "Bearer"} {
		if strings.Contains(out, pattern) {
			t.Errorf("log output contains %q: %s", pattern, out)
		}
	}
}

func TestLogging_Fields(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/api/recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("12345"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/7", nil)
	req.Header.Set("User-Agent", "TestBrowser/2.0")

	out := logRequest(t, r, req)

	for _, field := range []string{
		`"method":"GET"`,
		`"path":"/api/recipes/7"`,
		`"route":"/api/recipes/{id}"`,
		`"status_code":201`,
		`"bytes":5`,
		`"user_agent":"TestBrowser/2.0"`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("expected %s in %s", field, out)
		}
	}
}

func TestLogging_LevelByStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNoContent, "INFO"},
		{http.StatusBadRequest, "WARN"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			out := logRequest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}), httptest.NewRequest(http.MethodGet, "/api/tags", nil))

			if !strings.Contains(out, `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %s for %d, got %s", tt.level, tt.status, out)
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := wrapResponseWriter(rec)
	_, _ = rw.Write([]byte("hello"))
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.status != http.StatusOK {
		t.Errorf("status = %d, want implicit 200", rw.status)
	}
	if rw.bytes != 5 {
		t.Errorf("bytes = %d, want 5", rw.bytes)
	}

	rw = wrapResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.status != http.StatusCreated {
		t.Errorf("status after double write = %d, want %d", rw.status, http.StatusCreated)
	}
}
