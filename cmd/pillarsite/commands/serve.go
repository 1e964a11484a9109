package commands

import (
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/pillarsite/internal/logfields"
	"git.home.luguber.info/inful/pillarsite/internal/metrics"
	"git.home.luguber.info/inful/pillarsite/internal/preview"
	"git.home.luguber.info/inful/pillarsite/internal/server"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port            int           `short:"p" help:"Port to listen on (overrides serve.port)"`
	Watch           bool          `short:"w" help:"Rebuild when content, templates or assets change"`
	RebuildInterval time.Duration `name:"rebuild-interval" help:"Also rebuild on this interval, e.g. 5m (0 disables)"`
	Metrics         bool          `help:"Expose Prometheus metrics (overrides serve.metrics)"`
	NoGit           bool          `name:"no-git" help:"Do not read post dates from git history"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	applyBuildOverrides(cfg, "", s.NoGit)
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	if s.Metrics {
		cfg.Serve.Metrics = true
	}

	var reg *prom.Registry
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Serve.Metrics {
		reg = metrics.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger(store)

	ctx := g.ctx()
	builder := newBuilder(cfg, store, recorder)
	status := &preview.Status{}
	live := s.Watch || s.RebuildInterval > 0

	if _, err := builder.Run(ctx); err != nil {
		if !live {
			return err
		}
		// Keep serving; the next change gets another chance.
		slog.Error("Initial build failed", logfields.Error(err))
	}

	srv := server.New(cfg.OutputDir, server.Options{
		Port:        cfg.Serve.Port,
		MetricsPath: cfg.Serve.MetricsPath,
		Registry:    reg,
		Recorder:    recorder,
	})

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { return srv.ListenAndServe(gctx) })
	if live {
		opts := preview.Options{
			OutputDir:       cfg.OutputDir,
			RebuildInterval: s.RebuildInterval,
		}
		if s.Watch {
			opts.WatchDirs = []string{cfg.ContentDir, cfg.TemplateDir, cfg.AssetsDir}
		}
		grp.Go(func() error { return preview.Watch(gctx, builder, opts, status) })
	}
	return grp.Wait()
}
