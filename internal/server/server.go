// Package server is the development file server for a built site.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pillarsite/internal/metrics"
	smw "git.home.luguber.info/inful/pillarsite/internal/server/middleware"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Port int
	// MetricsPath mounts the Prometheus handler when Registry is set.
	MetricsPath string
	Registry    *prom.Registry
	Recorder    metrics.Recorder
	Logger      *slog.Logger
}

// Server serves an output directory over HTTP.
type Server struct {
	root string
	opts Options
}

// New returns a server for the tree under root.
func New(root string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Server{root: root, opts: opts}
}

// Handler returns the full handler: files, optional metrics and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.Registry != nil && s.opts.MetricsPath != "" {
		mux.Handle(s.opts.MetricsPath, metrics.HTTPHandler(s.opts.Registry))
	}
	mux.Handle("/", Files(s.root))
	return smw.Chain(s.opts.Logger, s.opts.Recorder)(mux)
}

// ListenAndServe binds the configured port and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.opts.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.opts.Logger.Info("Dev server running", slog.String("url", "http://"+displayAddr(ln.Addr())),
		slog.String("root", s.root))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dev server shutdown: %w", err)
	}
	s.opts.Logger.Info("Dev server stopped")
	return nil
}

func displayAddr(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		return fmt.Sprintf("localhost:%d", tcp.Port)
	}
	return addr.String()
}
