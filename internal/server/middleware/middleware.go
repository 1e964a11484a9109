// Package middleware wraps the development server's handlers.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pillarsite/internal/logfields"
	"git.home.luguber.info/inful/pillarsite/internal/metrics"
)

// RequestIDHeader carries the ID assigned to each request.
const RequestIDHeader = "X-Request-Id"

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// Chain returns the dev server's middleware stack, outermost first: request
// ID, access log with request counting, no-cache headers, panic recovery.
func Chain(logger *slog.Logger, recorder metrics.Recorder) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	stack := []Middleware{
		requestID,
		accessLog(logger, recorder),
		noCache,
		recoverPanic(logger),
	}
	return func(next http.Handler) http.Handler {
		for i := len(stack) - 1; i >= 0; i-- {
			next = stack[i](next)
		}
		return next
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// accessLog logs every request; client and server errors at a higher level
// so a missing page stands out while previewing.
func accessLog(logger *slog.Logger, recorder metrics.Recorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			recorder.IncHTTPRequest(sw.status)

			level := slog.LevelInfo
			switch {
			case sw.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case sw.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "HTTP request",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.Status(sw.status),
				logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
				slog.String("request_id", r.Header.Get(RequestIDHeader)),
				logfields.UserAgent(r.UserAgent()),
				logfields.RemoteAddr(r.RemoteAddr))
		})
	}
}

// noCache keeps browsers from showing pages from before the last rebuild.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}

func recoverPanic(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("HTTP handler panic",
						slog.Any("panic", v),
						logfields.Method(r.Method),
						logfields.Path(r.URL.Path),
						slog.String("request_id", r.Header.Get(RequestIDHeader)))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
