package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pillarsite/internal/metrics"
)

type countingRecorder struct {
	metrics.NoopRecorder
	statuses []int
}

func (c *countingRecorder) IncHTTPRequest(status int) { c.statuses = append(c.statuses, status) }

func TestChain_LogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rec := &countingRecorder{}

	h := Chain(logger, rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/algorithms/sorting", nil))

	require.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, []int{http.StatusTeapot}, rec.statuses)
	require.Contains(t, buf.String(), "path=/algorithms/sorting")
	require.Contains(t, buf.String(), "status=418")
	require.Contains(t, buf.String(), "level=WARN")
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))
	require.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}

func TestChain_KeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Chain(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	require.Contains(t, buf.String(), "request_id=abc-123")
	require.Contains(t, buf.String(), "level=INFO")
}

func TestChain_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rec := &countingRecorder{}

	h := Chain(logger, rec)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, []int{http.StatusInternalServerError}, rec.statuses)
	require.Contains(t, buf.String(), "HTTP handler panic")
}

func TestChain_NilDependencies(t *testing.T) {
	h := Chain(nil, nil)(http.NotFoundHandler())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
