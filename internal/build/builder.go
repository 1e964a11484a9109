package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/pillarsite/internal/config"
	"git.home.luguber.info/inful/pillarsite/internal/content"
	"git.home.luguber.info/inful/pillarsite/internal/eventstore"
	ferrors "git.home.luguber.info/inful/pillarsite/internal/foundation/errors"
	"git.home.luguber.info/inful/pillarsite/internal/gitstamp"
	"git.home.luguber.info/inful/pillarsite/internal/logfields"
	"git.home.luguber.info/inful/pillarsite/internal/markdown"
	"git.home.luguber.info/inful/pillarsite/internal/metrics"
	"git.home.luguber.info/inful/pillarsite/internal/render"
)

// Builder runs builds for one configuration. It is safe to call Run
// repeatedly but not concurrently.
type Builder struct {
	cfg        *config.Config
	timestamps content.TimestampProvider
	recorder   metrics.Recorder
	ledger     eventstore.Store
	markdown   *markdown.Renderer
	clock      func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithTimestamps replaces the timestamp provider chosen from the configuration.
func WithTimestamps(p content.TimestampProvider) Option {
	return func(b *Builder) { b.timestamps = p }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithLedger records every build in the given history store.
func WithLedger(s eventstore.Store) Option {
	return func(b *Builder) { b.ledger = s }
}

// WithClock sets the fallback time used for posts without timestamps.
func WithClock(clock func() time.Time) Option {
	return func(b *Builder) { b.clock = clock }
}

// New creates a Builder. Unless overridden, timestamps come from git when
// build.use_git is enabled and from the clock otherwise.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		markdown: markdown.NewRenderer(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.timestamps == nil {
		if cfg.Build.GitEnabled() {
			b.timestamps = GitTimestamps(gitstamp.New())
		} else {
			b.timestamps = content.NoTimestamps{}
		}
	}
	return b
}

// GitTimestamps adapts a git history provider to content discovery.
func GitTimestamps(p *gitstamp.Provider) content.TimestampProvider {
	return content.TimestampFunc(func(ctx context.Context, path string) (content.Timestamps, error) {
		created, modified, err := p.Times(ctx, path)
		if err != nil {
			return content.Timestamps{}, err
		}
		return content.Timestamps{Created: created, Modified: modified}, nil
	})
}

// buildState carries mutable state across stages.
type buildState struct {
	cfg        *config.Config
	report     *Report
	recorder   metrics.Recorder
	markdown   *markdown.Renderer
	discoverer *content.Discoverer

	site     *content.Site
	composer *render.Composer

	mu     sync.Mutex
	topics []pageRecord
}

// pageRecord is one written topic page.
type pageRecord struct {
	pillar      string
	slug        string
	path        string
	fingerprint string
}

func (bs *buildState) addTopic(rec pageRecord) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.topics = append(bs.topics, rec)
	bs.report.Topics++
	bs.report.Pages++
}

func (bs *buildState) addPage() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.report.Pages++
}

// sortedTopics returns the written topic pages ordered by output path.
func (bs *buildState) sortedTopics() []pageRecord {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	out := make([]pageRecord, len(bs.topics))
	copy(out, bs.topics)
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

// Run executes one build. The returned report is never nil; on failure it
// describes how far the build got.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	report := newReport(uuid.NewString(), b.cfg.OutputDir, time.Now())
	bs := &buildState{
		cfg:      b.cfg,
		report:   report,
		recorder: b.recorder,
		markdown: b.markdown,
		discoverer: content.NewDiscoverer(b.timestamps,
			content.WithDefaultTag(b.cfg.DefaultTag),
			content.WithWorkers(b.cfg.Build.Workers),
			content.WithClock(b.clock),
			content.WithReservedPillars(filepath.Base(b.cfg.CNAMEFile))),
	}

	slog.Info("Build started", logfields.BuildID(report.BuildID),
		slog.String("content", b.cfg.ContentDir), slog.String("output", b.cfg.OutputDir))
	b.recordStart(ctx, report)

	err := runStages(ctx, bs, []stageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageCopyAssets, stageCopyAssets},
		{StageCopyCNAME, stageCopyCNAME},
		{StageDiscover, stageDiscover},
		{StageRenderPillars, stageRenderPillars},
		{StageRenderHome, stageRenderHome},
	})

	if err != nil {
		report.finish(time.Now(), true)
		b.recordFailure(ctx, report, err)
		b.recorder.ObserveBuildDuration(report.Duration())
		b.recorder.IncBuildOutcome(report.metricsOutcome())
		slog.Error("Build failed", logfields.BuildID(report.BuildID), logfields.Error(err))
		return report, classify(err)
	}

	b.recordSuccess(ctx, bs)
	report.finish(time.Now(), false)
	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(report.metricsOutcome())
	slog.Info("Build completed",
		logfields.BuildID(report.BuildID),
		slog.String("outcome", string(report.Outcome)),
		slog.Int("pillars", report.Pillars),
		slog.Int("pages", report.Pages),
		slog.Int("changed", report.Changed),
		slog.Int("skipped", len(report.Skipped)),
		logfields.DurationMS(float64(report.Duration().Microseconds())/1000))
	return report, nil
}

// classify makes sure the error leaving Run carries a category for the CLI.
func classify(err error) error {
	if ferrors.IsClassified(err) {
		return err
	}
	var se *StageError
	stage := ""
	if errors.As(err, &se) {
		stage = string(se.Stage)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ferrors.NewError(ferrors.CategoryRuntime, "build canceled").
			WithCause(err).WithContext("stage", stage).Build()
	}
	return ferrors.BuildError("build failed").WithCause(err).WithContext("stage", stage).Build()
}

func stagePrepareOutput(_ context.Context, bs *buildState) error {
	out := bs.cfg.OutputDir
	abs, err := filepath.Abs(out)
	if err != nil {
		return ferrors.FileSystemError("cannot resolve output directory").
			WithCause(err).WithContext("output_dir", out).Build()
	}
	wd, _ := os.Getwd()
	if abs == filepath.Dir(abs) || abs == wd {
		return ferrors.ConfigError("output directory would remove the working tree").
			WithCause(ErrUnsafeOutputDir).WithContext("output_dir", out).Build()
	}
	if err := os.RemoveAll(abs); err != nil {
		return ferrors.FileSystemError("failed to clean output directory").
			WithCause(fmt.Errorf("%w: %w", ErrOutputPrepare, err)).WithContext("output_dir", out).Build()
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return ferrors.FileSystemError("failed to create output directory").
			WithCause(fmt.Errorf("%w: %w", ErrOutputPrepare, err)).WithContext("output_dir", out).Build()
	}
	return nil
}

func stageCopyAssets(_ context.Context, bs *buildState) error {
	src := bs.cfg.AssetsDir
	info, err := os.Stat(src)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return newWarnStageError(StageCopyAssets, fmt.Errorf("assets directory %s not found", src))
	}
	if err != nil {
		return ferrors.FileSystemError("cannot read assets directory").
			WithCause(fmt.Errorf("%w: %w", ErrCopyAssets, err)).WithContext("assets_dir", src).Build()
	}
	if err := copyDir(src, filepath.Join(bs.cfg.OutputDir, "assets")); err != nil {
		return ferrors.FileSystemError("failed to copy assets").
			WithCause(fmt.Errorf("%w: %w", ErrCopyAssets, err)).WithContext("assets_dir", src).Build()
	}
	return nil
}

func stageCopyCNAME(_ context.Context, bs *buildState) error {
	src := bs.cfg.CNAMEFile
	if src == "" {
		return nil
	}
	// #nosec G304 -- path comes from configuration
	data, err := os.ReadFile(src)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No custom domain file", logfields.Path(src))
		return nil
	}
	if err != nil {
		return ferrors.FileSystemError("cannot read custom domain file").
			WithCause(err).WithContext("cname_file", src).Build()
	}
	if err := writePage(bs.cfg.OutputDir, filepath.Base(src), data); err != nil {
		return ferrors.FileSystemError("failed to copy custom domain file").
			WithCause(err).WithContext("cname_file", src).Build()
	}
	return nil
}

func stageDiscover(ctx context.Context, bs *buildState) error {
	site, err := bs.discoverer.Discover(ctx, bs.cfg.ContentDir)
	if err != nil {
		var b *ferrors.ErrorBuilder
		switch {
		case errors.Is(err, content.ErrRootUnreadable), errors.Is(err, content.ErrPostReadFailed):
			b = ferrors.FileSystemError("cannot read content")
		case errors.Is(err, content.ErrSlugCollision):
			b = ferrors.ContentError("duplicate topic slug")
		case errors.Is(err, content.ErrSlugInvalid):
			b = ferrors.ContentError("topic slug is not a plain file name")
		case errors.Is(err, content.ErrPillarReserved):
			b = ferrors.ContentError("pillar directory name is reserved for generated output")
		case errors.Is(err, content.ErrDescriptorInvalid):
			b = ferrors.ContentError("invalid pillar descriptor")
		default:
			return err
		}
		return b.WithCause(err).WithContext("content_dir", bs.cfg.ContentDir).Build()
	}
	bs.site = site
	bs.report.Pillars = len(site.Pillars)
	bs.report.Skipped = site.Skipped
	for _, s := range site.Skipped {
		bs.recorder.IncTopicsSkipped(s.Pillar)
	}
	return nil
}

func stageRenderPillars(ctx context.Context, bs *buildState) error {
	composer, err := render.NewComposer(bs.cfg.TemplateDir, bs.cfg.Site, bs.site.Pillars)
	if err != nil {
		return ferrors.TemplateError("cannot load page templates").
			WithCause(err).WithContext("template_dir", bs.cfg.TemplateDir).Build()
	}
	bs.composer = composer

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, bs.cfg.Build.Workers))
	for _, pillar := range bs.site.Pillars {
		g.Go(func() error {
			return bs.renderPillar(gctx, pillar)
		})
	}
	return g.Wait()
}

func (bs *buildState) renderPillar(ctx context.Context, pillar *content.Pillar) error {
	index := pillar.Slug + "/index.html"
	page, err := bs.composer.PillarIndex(pillar)
	if err != nil {
		return pageError(err, index)
	}
	if err := writePage(bs.cfg.OutputDir, index, page); err != nil {
		return pageError(err, index)
	}
	bs.addPage()

	for _, post := range pillar.Posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := pillar.Slug + "/" + post.Slug + ".html"
		html, err := bs.markdown.Render(post.Body)
		if err != nil {
			return pageError(fmt.Errorf("%w: %w", ErrRenderPage, err), rel)
		}
		page, err := bs.composer.Topic(pillar, post, html)
		if err != nil {
			return pageError(err, rel)
		}
		if err := writePage(bs.cfg.OutputDir, rel, page); err != nil {
			return pageError(err, rel)
		}
		bs.addTopic(pageRecord{pillar: pillar.Slug, slug: post.Slug, path: rel, fingerprint: post.Fingerprint})
	}

	bs.recorder.AddPagesRendered(pillar.Slug, len(pillar.Posts)+1)
	slog.Debug("Pillar rendered", logfields.Pillar(pillar.Slug), logfields.Count(len(pillar.Posts)))
	return nil
}

func stageRenderHome(_ context.Context, bs *buildState) error {
	recent := bs.site.RecentPosts(bs.cfg.RecentPosts)
	page, err := bs.composer.Home(bs.site, recent)
	if err != nil {
		return pageError(err, "index.html")
	}
	if err := writePage(bs.cfg.OutputDir, "index.html", page); err != nil {
		return pageError(err, "index.html")
	}
	bs.addPage()
	return nil
}

func pageError(err error, page string) error {
	var b *ferrors.ErrorBuilder
	switch {
	case errors.Is(err, ErrWritePage):
		b = ferrors.FileSystemError("failed to write page")
	case errors.Is(err, render.ErrTemplateMissing),
		errors.Is(err, render.ErrTemplateParse),
		errors.Is(err, render.ErrTemplateExecute):
		b = ferrors.TemplateError("failed to render page template")
	default:
		b = ferrors.BuildError("failed to render page")
	}
	return b.WithCause(err).WithContext("page", page).Build()
}
