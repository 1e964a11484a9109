// Package content discovers pillars and posts under a content root and
// groups posts into sections.
package content

import (
	"sort"
	"time"
)

// Mode records how a pillar's sections were obtained.
type Mode string

const (
	ModeDeclared Mode = "declared"
	ModeAuto     Mode = "auto"
)

// Post is one markdown file. Posts are not modified after discovery.
type Post struct {
	Slug       string
	Title      string
	Tags       []string
	Published  time.Time
	Edited     time.Time
	Body       []byte
	PillarSlug string
	// Section is the primary section, shown in the breadcrumb.
	Section     string
	SourcePath  string
	Fingerprint string
}

// Section groups posts under a name. In auto mode a post appears in one
// section per tag.
type Section struct {
	Name  string
	Posts []*Post
}

// Pillar is a top-level content directory.
type Pillar struct {
	Slug     string
	Name     string
	Mode     Mode
	Sections []Section
	// Posts holds each post once, in discovery order.
	Posts []*Post
}

// Tags returns the distinct tags of the pillar's posts in first-seen order.
func (p *Pillar) Tags() []string {
	seen := map[string]bool{}
	var tags []string
	for _, post := range p.Posts {
		for _, tag := range post.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// SkippedTopic is a declared topic whose markdown file does not exist.
type SkippedTopic struct {
	Pillar string
	Slug   string
	Path   string
}

// Site is the result of discovering a content root.
type Site struct {
	Pillars []*Pillar
	Posts   []*Post
	Skipped []SkippedTopic
}

// RecentPosts returns up to n posts, newest first. Ties are broken by
// pillar then slug so the order is stable.
func (s *Site) RecentPosts(n int) []*Post {
	if n <= 0 {
		return nil
	}
	posts := make([]*Post, len(s.Posts))
	copy(posts, s.Posts)
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.Published.Equal(b.Published) {
			return a.Published.After(b.Published)
		}
		if a.PillarSlug != b.PillarSlug {
			return a.PillarSlug < b.PillarSlug
		}
		return a.Slug < b.Slug
	})
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts
}
