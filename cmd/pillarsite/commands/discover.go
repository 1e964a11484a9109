package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/pillarsite/internal/build"
	"git.home.luguber.info/inful/pillarsite/internal/config"
	"git.home.luguber.info/inful/pillarsite/internal/content"
	ferrors "git.home.luguber.info/inful/pillarsite/internal/foundation/errors"
	"git.home.luguber.info/inful/pillarsite/internal/gitstamp"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct {
	JSON  bool `help:"Print the result as JSON"`
	NoGit bool `name:"no-git" help:"Do not read post dates from git history"`
}

type discoveredPost struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	Published time.Time `json:"published"`
	Edited    time.Time `json:"edited"`
	Section   string    `json:"section"`
}

type discoveredSection struct {
	Name  string   `json:"name"`
	Posts []string `json:"posts"`
}

type discoveredPillar struct {
	Slug     string              `json:"slug"`
	Name     string              `json:"name"`
	Mode     string              `json:"mode"`
	Sections []discoveredSection `json:"sections"`
	Posts    []discoveredPost    `json:"posts"`
}

type discoveredSkip struct {
	Pillar string `json:"pillar"`
	Slug   string `json:"slug"`
	Path   string `json:"path"`
}

type discoveredSite struct {
	Pillars []discoveredPillar `json:"pillars"`
	Skipped []discoveredSkip   `json:"skipped,omitempty"`
}

func (d *DiscoverCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	applyBuildOverrides(cfg, "", d.NoGit)

	site, err := discoverSite(g, cfg)
	if err != nil {
		return err
	}
	summary := summarizeSite(site)
	if d.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return printSite(g.out(), summary)
}

func discoverSite(g *Global, cfg *config.Config) (*content.Site, error) {
	var ts content.TimestampProvider = content.NoTimestamps{}
	if cfg.Build.GitEnabled() {
		ts = build.GitTimestamps(gitstamp.New())
	}
	discoverer := content.NewDiscoverer(ts,
		content.WithDefaultTag(cfg.DefaultTag),
		content.WithWorkers(cfg.Build.Workers),
		content.WithReservedPillars(filepath.Base(cfg.CNAMEFile)),
	)
	site, err := discoverer.Discover(g.ctx(), cfg.ContentDir)
	if err == nil {
		return site, nil
	}
	category := ferrors.CategoryContent
	if errors.Is(err, content.ErrRootUnreadable) || errors.Is(err, content.ErrPostReadFailed) {
		category = ferrors.CategoryFileSystem
	}
	return nil, ferrors.WrapError(err, category, "content discovery failed").
		WithContext("content_dir", cfg.ContentDir).
		Build()
}

func summarizeSite(site *content.Site) discoveredSite {
	var out discoveredSite
	for _, s := range site.Skipped {
		out.Skipped = append(out.Skipped, discoveredSkip{Pillar: s.Pillar, Slug: s.Slug, Path: s.Path})
	}
	for _, p := range site.Pillars {
		dp := discoveredPillar{Slug: p.Slug, Name: p.Name, Mode: string(p.Mode)}
		for _, s := range p.Sections {
			ds := discoveredSection{Name: s.Name}
			for _, post := range s.Posts {
				ds.Posts = append(ds.Posts, post.Slug)
			}
			dp.Sections = append(dp.Sections, ds)
		}
		for _, post := range p.Posts {
			dp.Posts = append(dp.Posts, discoveredPost{
				Slug:      post.Slug,
				Title:     post.Title,
				Tags:      post.Tags,
				Published: post.Published,
				Edited:    post.Edited,
				Section:   post.Section,
			})
		}
		out.Pillars = append(out.Pillars, dp)
	}
	return out
}

func printSite(w io.Writer, site discoveredSite) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range site.Pillars {
		_, _ = fmt.Fprintf(tw, "%s\t(%s, %s)\n", p.Name, p.Slug, p.Mode)
		for _, s := range p.Sections {
			_, _ = fmt.Fprintf(tw, "  %s\t%d posts\n", s.Name, len(s.Posts))
			for _, slug := range s.Posts {
				_, _ = fmt.Fprintf(tw, "    %s\t\n", slug)
			}
		}
	}
	for _, s := range site.Skipped {
		_, _ = fmt.Fprintf(tw, "skipped\t%s/%s\t%s\n", s.Pillar, s.Slug, s.Path)
	}
	return tw.Flush()
}
