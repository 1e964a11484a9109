// Package render composes discovered content into HTML pages: the shared
// fragments (sidebar, breadcrumb, table of contents, pillar index, recent
// posts) and the page templates they are slotted into.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/pillarsite/internal/content"
	"git.home.luguber.info/inful/pillarsite/internal/markdown"
)

// DateLayout is how dates are shown on pages.
const DateLayout = "January 2, 2006"

//go:embed partials/*.html
var partialFS embed.FS

var partials = template.Must(template.New("partials").
	Funcs(template.FuncMap{"upper": strings.ToUpper}).
	ParseFS(partialFS, "partials/*.html"))

func executePartial(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := partials.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: partial %s: %w", ErrTemplateExecute, name, err)
	}
	// #nosec G203 -- produced by html/template
	return template.HTML(buf.String()), nil
}

// Sidebar lists the pillar's sections and posts, marking currentSlug active.
func Sidebar(pillar *content.Pillar, currentSlug string) (template.HTML, error) {
	return executePartial("sidebar", struct {
		Pillar  *content.Pillar
		Current string
	}{pillar, currentSlug})
}

// Breadcrumb renders LIBRARY › PILLAR › SECTION › TITLE.
func Breadcrumb(pillar *content.Pillar, section, title string) (template.HTML, error) {
	return executePartial("breadcrumb", struct {
		PillarSlug, Pillar, Section, Title string
	}{pillar.Slug, pillar.Name, section, title})
}

// TOC renders table of contents links. No items render as the empty string.
func TOC(items []markdown.TocItem) (template.HTML, error) {
	if len(items) == 0 {
		return "", nil
	}
	return executePartial("toc", items)
}

type card struct {
	Href     string
	Title    string
	TagsJSON string
	Date     string
	Display  string
}

func newCard(post *content.Post) (card, error) {
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return card{}, fmt.Errorf("encode tags of %s: %w", post.Slug, err)
	}
	return card{
		Href:     PostURL(post),
		Title:    post.Title,
		TagsJSON: string(tags),
		Date:     post.Published.UTC().Format(time.RFC3339),
		Display:  FormatDate(post.Published),
	}, nil
}

// PillarIndex renders a pillar's landing page body: a by-topic view
// grouped by section and a hidden by-date view, with view, sort and tag
// filter controls.
func PillarIndex(pillar *content.Pillar) (template.HTML, error) {
	type sectionView struct {
		Name  string
		Cards []card
	}
	view := struct {
		Name     string
		Tags     []string
		Sections []sectionView
		ByDate   []card
	}{Name: pillar.Name, Tags: pillar.Tags()}

	for _, section := range pillar.Sections {
		sv := sectionView{Name: section.Name}
		for _, post := range section.Posts {
			c, err := newCard(post)
			if err != nil {
				return "", err
			}
			sv.Cards = append(sv.Cards, c)
		}
		view.Sections = append(view.Sections, sv)
	}

	byDate := make([]*content.Post, len(pillar.Posts))
	copy(byDate, pillar.Posts)
	sort.SliceStable(byDate, func(i, j int) bool {
		if !byDate[i].Published.Equal(byDate[j].Published) {
			return byDate[i].Published.After(byDate[j].Published)
		}
		return byDate[i].Slug < byDate[j].Slug
	})
	for _, post := range byDate {
		c, err := newCard(post)
		if err != nil {
			return "", err
		}
		view.ByDate = append(view.ByDate, c)
	}

	return executePartial("pillar_index", view)
}

// RecentPosts renders the homepage list. pillarNames maps pillar slugs to
// display names; unknown slugs are shown as-is.
func RecentPosts(posts []*content.Post, pillarNames map[string]string) (template.HTML, error) {
	type entry struct {
		Href, Title, Pillar, Display string
		Tags                         []string
	}
	entries := make([]entry, 0, len(posts))
	for _, post := range posts {
		name, ok := pillarNames[post.PillarSlug]
		if !ok {
			name = post.PillarSlug
		}
		entries = append(entries, entry{
			Href:    PostURL(post),
			Title:   post.Title,
			Pillar:  name,
			Display: FormatDate(post.Published),
			Tags:    post.Tags,
		})
	}
	return executePartial("recent_posts", entries)
}

// PostURL is the site-absolute URL of a post page.
func PostURL(post *content.Post) string {
	return "/" + post.PillarSlug + "/" + post.Slug + ".html"
}

// PillarURL is the site-absolute URL of a pillar index.
func PillarURL(pillar *content.Pillar) string {
	return "/" + pillar.Slug + "/"
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
