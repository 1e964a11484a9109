package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/pillarsite/internal/frontmatter"
	"git.home.luguber.info/inful/pillarsite/internal/logfields"
)

// DefaultTag is assigned to auto-mode posts that declare no tags.
const DefaultTag = "General"

// reservedSlugs would overwrite generated pages.
var reservedSlugs = map[string]bool{"index": true}

// reservedPillars are output root entries the build writes besides pillars.
var reservedPillars = []string{"assets", "index.html"}

// Discoverer walks a content root. The zero value is not usable; use NewDiscoverer.
type Discoverer struct {
	timestamps TimestampProvider
	defaultTag string
	clock      func() time.Time
	workers    int
	reserved   map[string]bool
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithDefaultTag sets the tag used for untagged auto-mode posts.
func WithDefaultTag(tag string) Option {
	return func(d *Discoverer) {
		if tag != "" {
			d.defaultTag = tag
		}
	}
}

// WithClock replaces the time source used when timestamps are unknown.
func WithClock(clock func() time.Time) Option {
	return func(d *Discoverer) { d.clock = clock }
}

// WithWorkers bounds how many pillars are discovered at once.
func WithWorkers(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithReservedPillars adds directory names that must not become pillars,
// such as the custom domain file copied into the output root.
func WithReservedPillars(names ...string) Option {
	return func(d *Discoverer) {
		for _, name := range names {
			if name != "" {
				d.reserved[name] = true
			}
		}
	}
}

// NewDiscoverer creates a discoverer. A nil provider behaves like NoTimestamps.
func NewDiscoverer(timestamps TimestampProvider, opts ...Option) *Discoverer {
	if timestamps == nil {
		timestamps = NoTimestamps{}
	}
	d := &Discoverer{
		timestamps: timestamps,
		defaultTag: DefaultTag,
		clock:      time.Now,
		workers:    4,
		reserved:   map[string]bool{},
	}
	for _, name := range reservedPillars {
		d.reserved[name] = true
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover returns one pillar per non-hidden subdirectory of root, ordered
// by directory name.
func (d *Discoverer) Discover(ctx context.Context, root string) (*Site, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		if d.reserved[entry.Name()] {
			return nil, fmt.Errorf("%w: %s", ErrPillarReserved, filepath.Join(root, entry.Name()))
		}
		dirs = append(dirs, entry.Name())
	}
	sort.Strings(dirs)

	type result struct {
		pillar  *Pillar
		skipped []SkippedTopic
	}
	results := make([]result, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, name := range dirs {
		g.Go(func() error {
			pillar, skipped, err := d.discoverPillar(gctx, filepath.Join(root, name))
			if err != nil {
				return err
			}
			results[i] = result{pillar: pillar, skipped: skipped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	site := &Site{}
	for _, r := range results {
		site.Pillars = append(site.Pillars, r.pillar)
		site.Posts = append(site.Posts, r.pillar.Posts...)
		site.Skipped = append(site.Skipped, r.skipped...)
	}
	slog.Info("Content discovered",
		slog.Int("pillars", len(site.Pillars)),
		logfields.Count(len(site.Posts)),
		slog.Int("skipped", len(site.Skipped)))
	return site, nil
}

func (d *Discoverer) discoverPillar(ctx context.Context, dir string) (*Pillar, []SkippedTopic, error) {
	src, err := ResolveSource(dir)
	if err != nil {
		return nil, nil, err
	}

	slug := filepath.Base(dir)
	switch s := src.(type) {
	case DeclaredSource:
		return d.discoverDeclared(ctx, slug, s)
	case AutoSource:
		pillar, err := d.discoverAuto(ctx, slug, s)
		return pillar, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown source %T", src)
	}
}

func (d *Discoverer) discoverDeclared(ctx context.Context, pillarSlug string, src DeclaredSource) (*Pillar, []SkippedTopic, error) {
	name := src.Descriptor.Pillar
	if name == "" {
		name = TitleFromSlug(pillarSlug)
	}
	pillar := &Pillar{Slug: pillarSlug, Name: name, Mode: ModeDeclared}

	var skipped []SkippedTopic
	declared := map[string]bool{}
	posts := map[string]*Post{}
	for _, section := range src.Descriptor.Sections {
		for _, topic := range section.Topics {
			if declared[topic.Slug] || reservedSlugs[topic.Slug] {
				return nil, nil, fmt.Errorf("%w: %s/%s", ErrSlugCollision, pillarSlug, topic.Slug)
			}
			declared[topic.Slug] = true

			path := filepath.Join(src.Dir, topic.Slug+".md")
			raw, err := os.ReadFile(path)
			if errors.Is(err, os.ErrNotExist) {
				slog.Warn("Declared topic file missing, skipping",
					logfields.Pillar(pillarSlug), logfields.Slug(topic.Slug), logfields.Path(path))
				skipped = append(skipped, SkippedTopic{Pillar: pillarSlug, Slug: topic.Slug, Path: path})
				continue
			}
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s: %w", ErrPostReadFailed, path, err)
			}

			post := d.newPost(ctx, pillarSlug, topic.Slug, path, raw)
			if topic.Title != "" {
				post.Title = topic.Title
			}
			if len(post.Tags) == 0 {
				post.Tags = []string{section.Name}
			}
			post.Section = section.Name
			posts[topic.Slug] = post
			pillar.Posts = append(pillar.Posts, post)
		}
	}
	pillar.Sections = GroupDeclared(src.Descriptor, posts)
	return pillar, skipped, nil
}

func (d *Discoverer) discoverAuto(ctx context.Context, pillarSlug string, src AutoSource) (*Pillar, error) {
	pillar := &Pillar{Slug: pillarSlug, Name: TitleFromSlug(pillarSlug), Mode: ModeAuto}

	entries, err := os.ReadDir(src.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPostReadFailed, src.Dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || isHidden(name) || filepath.Ext(name) != ".md" {
			continue
		}
		slug := strings.TrimSuffix(name, ".md")
		if reservedSlugs[slug] {
			return nil, fmt.Errorf("%w: %s/%s", ErrSlugCollision, pillarSlug, slug)
		}

		path := filepath.Join(src.Dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrPostReadFailed, path, err)
		}
		post := d.newPost(ctx, pillarSlug, slug, path, raw)
		if len(post.Tags) == 0 {
			post.Tags = []string{d.defaultTag}
		}
		post.Section = post.Tags[0]
		pillar.Posts = append(pillar.Posts, post)
	}
	pillar.Sections = GroupByTag(pillar.Posts)
	return pillar, nil
}

// newPost fills everything except the mode-specific tag and section defaults.
func (d *Discoverer) newPost(ctx context.Context, pillarSlug, slug, path string, raw []byte) *Post {
	fm, body := frontmatter.Parse(raw)

	title := fm.Title
	if title == "" {
		title = TitleFromSlug(slug)
	}

	ts, err := d.timestamps.Lookup(ctx, path)
	if err != nil || ts.Created.IsZero() {
		slog.Debug("No timestamps for post, using clock",
			logfields.Pillar(pillarSlug), logfields.Slug(slug), logfields.Error(err))
		now := d.clock()
		ts = Timestamps{Created: now, Modified: now}
	}
	if ts.Modified.IsZero() {
		ts.Modified = ts.Created
	}

	return &Post{
		Slug:        slug,
		Title:       title,
		Tags:        fm.Tags,
		Published:   ts.Created,
		Edited:      ts.Modified,
		Body:        body,
		PillarSlug:  pillarSlug,
		SourcePath:  path,
		Fingerprint: fingerprint(raw),
	}
}

func fingerprint(raw []byte) string {
	fm, body, had, _, err := frontmatter.Split(raw)
	if err != nil || !had {
		return mdfp.CalculateFingerprintFromParts("", string(raw))
	}
	return mdfp.CalculateFingerprintFromParts(string(fm), string(body))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
