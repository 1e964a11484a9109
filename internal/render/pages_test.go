package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pillarsite/internal/config"
	"git.home.luguber.info/inful/pillarsite/internal/content"
	"git.home.luguber.info/inful/pillarsite/internal/markdown"
	"git.home.luguber.info/inful/pillarsite/internal/scaffold"
)

func defaultTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := scaffold.Write(scaffold.Layout{TemplateDir: dir}, false)
	require.NoError(t, err)
	return dir
}

func siteConfig() config.SiteConfig {
	return config.Default().Site
}

func newComposer(t *testing.T, dir string) *Composer {
	t.Helper()
	c, err := NewComposer(dir, siteConfig(), []*content.Pillar{fixturePillar()})
	require.NoError(t, err)
	return c
}

func TestComposer_Topic(t *testing.T) {
	c := newComposer(t, defaultTemplates(t))
	pillar := fixturePillar()
	post := pillar.Posts[0]
	post.Body = []byte("## Quick Sort\n\n### Partition\n")
	post.Edited = post.Published.Add(48 * time.Hour)

	rendered, err := markdown.NewRenderer().Render(post.Body)
	require.NoError(t, err)
	page, err := c.Topic(pillar, post, rendered)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	require.NoError(t, err)

	require.Equal(t, "Sorting | Algorithms | Library", doc.Find("title").Text())
	require.Equal(t, "ALGORITHMS", doc.Find(".topic-pillar").Text())
	require.Equal(t, "Sorting", doc.Find(".topic-title").Text())
	require.Equal(t, "April 2, 2024", doc.Find(".topic-date").Text())
	require.Equal(t, "Updated April 4, 2024", doc.Find(".topic-edited").Text())
	require.Equal(t, "1 min read", doc.Find(".topic-readtime").Text())
	require.Equal(t, 1, doc.Find(`.prose h2#quick-sort`).Length())
	require.Equal(t, 2, doc.Find(".toc a.toc-link").Length())
	require.Equal(t, "Sorting", doc.Find(".sidebar a.active").Text())
	require.Equal(t, "SORTING", doc.Find(".breadcrumb-current").Text())

	var active []string
	doc.Find(".navbar-link.active").Each(func(_ int, s *goquery.Selection) { active = append(active, s.Text()) })
	require.Equal(t, []string{"Algorithms"}, active)
	require.NotContains(t, string(page), "{{")
}

func TestComposer_OnlyCurrentPillarLinkIsActive(t *testing.T) {
	algorithms := fixturePillar()
	systems := &content.Pillar{Slug: "systems", Name: "Systems", Mode: content.ModeAuto}
	c, err := NewComposer(defaultTemplates(t), siteConfig(), []*content.Pillar{algorithms, systems})
	require.NoError(t, err)

	activeLinks := func(page []byte) []string {
		t.Helper()
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
		require.NoError(t, err)
		var active []string
		doc.Find(".navbar-link.active").Each(func(_ int, s *goquery.Selection) { active = append(active, s.Text()) })
		return active
	}

	topic, err := c.Topic(algorithms, algorithms.Posts[0], nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Algorithms"}, activeLinks(topic))

	index, err := c.PillarIndex(systems)
	require.NoError(t, err)
	require.Equal(t, []string{"Systems"}, activeLinks(index))

	home, err := c.Home(&content.Site{Pillars: []*content.Pillar{algorithms, systems}}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Home"}, activeLinks(home))
}

func TestComposer_TopicWithoutHeadingsHasNoTOC(t *testing.T) {
	c := newComposer(t, defaultTemplates(t))
	pillar := fixturePillar()
	page, err := c.Topic(pillar, pillar.Posts[1], []byte("<p>plain</p>"))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	require.NoError(t, err)
	require.Equal(t, 0, doc.Find(".toc").Length())
	require.Equal(t, 0, doc.Find(".topic-edited").Length())
}

func TestComposer_HomeAndPillarIndex(t *testing.T) {
	c := newComposer(t, defaultTemplates(t))
	pillar := fixturePillar()
	site := &content.Site{Pillars: []*content.Pillar{pillar}, Posts: pillar.Posts}

	home, err := c.Home(site, site.RecentPosts(2))
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(home)))
	require.NoError(t, err)
	require.Equal(t, 2, doc.Find(".recent-post").Length())
	require.Equal(t, "Home", doc.Find(".navbar-link.active").Text())

	index, err := c.PillarIndex(pillar)
	require.NoError(t, err)
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(string(index)))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".pillar-index").Length())
	require.Equal(t, "Algorithms | Library", doc.Find("title").Text())
}

func TestComposer_EmptyHome(t *testing.T) {
	c := newComposer(t, defaultTemplates(t))
	home, err := c.Home(&content.Site{}, nil)
	require.NoError(t, err)
	require.Contains(t, string(home), "Nothing published yet.")
}

func TestNewComposer_MissingTemplate(t *testing.T) {
	dir := defaultTemplates(t)
	require.NoError(t, os.Remove(filepath.Join(dir, HomeTemplate)))

	_, err := NewComposer(dir, siteConfig(), nil)
	require.ErrorIs(t, err, ErrTemplateMissing)
}

func TestNewComposer_ParseError(t *testing.T) {
	dir := defaultTemplates(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, TopicTemplate), []byte("{{.Title"), 0o600))

	_, err := NewComposer(dir, siteConfig(), nil)
	require.ErrorIs(t, err, ErrTemplateParse)
}

func TestComposer_UnknownSlotFails(t *testing.T) {
	dir := defaultTemplates(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, TopicTemplate), []byte("<div>{{.Sidebar}}{{.Author}}</div>"), 0o600))
	c := newComposer(t, dir)
	pillar := fixturePillar()

	_, err := c.Topic(pillar, pillar.Posts[0], nil)
	require.ErrorIs(t, err, ErrTemplateExecute)
	require.ErrorContains(t, err, "execute topic.html")
}

func TestComposer_UndeclaredNavTargetFails(t *testing.T) {
	dir := defaultTemplates(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, BaseTemplate),
		[]byte(`<a class="{{.NavClass "home"}}"></a><a class="{{.NavClass "about"}}"></a>{{.Content}}`), 0o600))
	c := newComposer(t, dir)

	_, err := c.Home(&content.Site{}, nil)
	require.ErrorIs(t, err, ErrTemplateExecute)
	require.ErrorContains(t, err, `undeclared nav target "about"`)
}

func TestBasePage_NavClass(t *testing.T) {
	p := BasePage{nav: "learn", declared: []string{"home", "learn", "blog"}}

	got, err := p.NavClass("learn")
	require.NoError(t, err)
	require.Equal(t, "active", got)

	got, err = p.NavClass("blog")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = p.NavClass("nope")
	require.Error(t, err)
}

func TestBasePage_PillarClass(t *testing.T) {
	p := BasePage{pillar: "systems"}
	require.Equal(t, "active", p.PillarClass("systems"))
	require.Empty(t, p.PillarClass("algorithms"))
	require.Empty(t, BasePage{}.PillarClass(""))
}
