package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, logger *slog.Logger, metrics *Metrics) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	r.Use(Logger(logger))
	r.Use(metrics.Handler)
	r.Get("/cats/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"NotFound"}`))
	})
	return r
}

func TestLogger_UsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := newRouter(t, logger, NewMetrics(prometheus.NewRegistry()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cats/abc", nil))

	line := buf.String()
	assert.Contains(t, line, "route=/cats/{id}")
	assert.Contains(t, line, "path=/cats/abc")
	assert.Contains(t, line, "status=404")
	assert.Contains(t, line, "level=WARN")
	assert.Contains(t, line, "bytes=20")
}

func TestMetrics_CountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := newRouter(t, logger, metrics)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cats/"+id, nil))
	}

	got := testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, "/cats/{id}", "404"))
	assert.Equal(t, 3.0, got)

	n, err := testutil.GatherAndCount(reg, "whiskerbook_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expected := `
# HELP whiskerbook_http_requests_total HTTP requests handled, by method, route and status code.
# TYPE whiskerbook_http_requests_total counter
whiskerbook_http_requests_total{method="GET",route="/cats/{id}",status="404"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "whiskerbook_http_requests_total"))
}

func TestRecoverer_WritesFallbackAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(Logger(logger))
	r.Use(Recoverer(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"An internal error occurred","error":"Unexpected"}`))
	})))
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("something broke")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"An internal error occurred","error":"Unexpected"}`, rec.Body.String())

	logs := buf.String()
	assert.Contains(t, logs, "panic recovered")
	assert.Contains(t, logs, "something broke")
	assert.Contains(t, logs, "status=500", "the request log sees the fallback status")
}

func TestRecoverer_ReraisesAbortHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := Recoverer(logger, http.NotFoundHandler())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
