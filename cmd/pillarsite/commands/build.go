package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pillarsite/internal/build"
	"git.home.luguber.info/inful/pillarsite/internal/config"
	"git.home.luguber.info/inful/pillarsite/internal/eventstore"
	"git.home.luguber.info/inful/pillarsite/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides output_dir)"`
	NoGit  bool   `name:"no-git" help:"Do not read post dates from git history"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	applyBuildOverrides(cfg, b.Output, b.NoGit)

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger(store)

	report, err := newBuilder(cfg, store, nil).Run(g.ctx())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Built %s: %s\n", report.OutputDir, report.Summary())
	return nil
}

func applyBuildOverrides(cfg *config.Config, output string, noGit bool) {
	if output != "" {
		cfg.OutputDir = output
	}
	if noGit {
		off := false
		cfg.Build.UseGit = &off
	}
}

func newBuilder(cfg *config.Config, store *eventstore.SQLiteStore, recorder metrics.Recorder) *build.Builder {
	opts := []build.Option{build.WithRecorder(recorder)}
	if store != nil {
		opts = append(opts, build.WithLedger(store))
	}
	return build.New(cfg, opts...)
}
