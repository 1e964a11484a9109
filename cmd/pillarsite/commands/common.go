package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pillarsite/internal/config"
	"git.home.luguber.info/inful/pillarsite/internal/eventstore"
	ferrors "git.home.luguber.info/inful/pillarsite/internal/foundation/errors"
)

// Global carries process-wide state into every command.
type Global struct {
	Context context.Context
	Stdout  io.Writer
}

func (g *Global) ctx() context.Context {
	if g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func (g *Global) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"pillarsite.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build the site into the output directory"`
	Serve    ServeCmd    `cmd:"" help:"Build the site and serve it locally"`
	Discover DiscoverCmd `cmd:"" help:"List pillars, sections and posts without writing output"`
	Init     InitCmd     `cmd:"" help:"Scaffold configuration, templates, assets and a sample pillar"`
	History  HistoryCmd  `cmd:"" help:"List recorded builds from the build history"`
}

// AfterApply runs after flag parsing; sets up logging until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.NormalizeLogLevel(os.Getenv(config.EnvLogLevel))
	setupLogging(level, config.LogFormatText, c.Verbose)
	return nil
}

// loadConfig loads the configuration and applies its logging settings.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, ferrors.ConfigError("failed to load configuration").
			WithCause(err).
			WithContext("path", c.Config).
			Build()
	}
	setupLogging(cfg.Logging.Level, cfg.Logging.Format, c.Verbose)
	return cfg, nil
}

func setupLogging(level config.LogLevel, format config.LogFormat, verbose bool) {
	logging := config.LoggingConfig{Level: level, Format: format}
	slog.SetDefault(logging.NewLogger(os.Stderr, verbose))
}

// openLedger opens the build history when configured. The returned store is
// nil when history is disabled.
func openLedger(cfg *config.Config) (*eventstore.SQLiteStore, error) {
	if !cfg.History.Enabled() {
		return nil, nil
	}
	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, ferrors.HistoryError("cannot open build history").
			WithCause(err).
			WithContext("path", cfg.History.Path).
			Build()
	}
	return store, nil
}

func closeLedger(store *eventstore.SQLiteStore) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close build history", "error", err)
	}
}
