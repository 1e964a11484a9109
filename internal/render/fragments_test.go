package render

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pillarsite/internal/content"
	"git.home.luguber.info/inful/pillarsite/internal/markdown"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func fixturePillar() *content.Pillar {
	day := func(d int) time.Time { return time.Date(2024, 4, d, 12, 0, 0, 0, time.UTC) }
	sorting := &content.Post{Slug: "sorting", Title: "Sorting", Tags: []string{"Basics", `say "hi", ok`}, Published: day(2), PillarSlug: "algorithms", Section: "Basics"}
	graphs := &content.Post{Slug: "graphs", Title: "Graphs & Trees", Tags: []string{"Advanced"}, Published: day(9), PillarSlug: "algorithms", Section: "Advanced"}
	heaps := &content.Post{Slug: "heaps", Title: "Heaps", Tags: []string{"Basics"}, Published: day(5), PillarSlug: "algorithms", Section: "Basics"}
	pillar := &content.Pillar{
		Slug: "algorithms",
		Name: "Algorithms",
		Mode: content.ModeDeclared,
		Sections: []content.Section{
			{Name: "Basics", Posts: []*content.Post{sorting, heaps}},
			{Name: "Advanced", Posts: []*content.Post{graphs}},
		},
		Posts: []*content.Post{sorting, heaps, graphs},
	}
	for _, post := range pillar.Posts {
		post.Edited = post.Published
	}
	return pillar
}

func TestSidebar(t *testing.T) {
	html, err := Sidebar(fixturePillar(), "heaps")
	require.NoError(t, err)
	doc := parse(t, string(html))

	require.Equal(t, "PILLAR", doc.Find(".sidebar-pillar").Text())
	require.Equal(t, "Algorithms", doc.Find(".sidebar-pillar-name").Text())
	require.Equal(t, 2, doc.Find(".sidebar-section").Length())
	require.Equal(t, "Basics", doc.Find(".sidebar-section-header span").First().Text())
	require.Equal(t, 2, doc.Find(".sidebar-toggle").Length())

	links := doc.Find(".sidebar-section-items a")
	require.Equal(t, 3, links.Length())
	href, _ := links.Eq(0).Attr("href")
	require.Equal(t, "/algorithms/sorting.html", href)

	active := doc.Find("a.active")
	require.Equal(t, 1, active.Length())
	require.Equal(t, "Heaps", active.Text())
	require.Equal(t, "Graphs & Trees", links.Eq(2).Text())
}

func TestBreadcrumb(t *testing.T) {
	html, err := Breadcrumb(fixturePillar(), "Basics", "Sorting")
	require.NoError(t, err)
	doc := parse(t, string(html))

	links := doc.Find(".breadcrumb a")
	require.Equal(t, "LIBRARY", links.Eq(0).Text())
	require.Equal(t, "ALGORITHMS", links.Eq(1).Text())
	href, _ := links.Eq(1).Attr("href")
	require.Equal(t, "/algorithms/", href)
	require.Equal(t, "SORTING", doc.Find(".breadcrumb-current").Text())
	require.Equal(t, 3, doc.Find(".breadcrumb-sep").Length())
	require.Contains(t, doc.Find(".breadcrumb").Text(), "BASICS")
}

func TestTOC(t *testing.T) {
	empty, err := TOC(nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	html, err := TOC([]markdown.TocItem{
		{ID: "intro", Text: "Intro", Level: 2},
		{ID: "a-b", Text: "A <b>", Level: 3},
	})
	require.NoError(t, err)
	doc := parse(t, string(html))

	links := doc.Find("a.toc-link")
	require.Equal(t, 2, links.Length())
	href, _ := links.Eq(0).Attr("href")
	require.Equal(t, "#intro", href)
	require.False(t, links.Eq(0).HasClass("toc-sub"))
	require.True(t, links.Eq(1).HasClass("toc-sub"))
	require.Equal(t, "A <b>", links.Eq(1).Text())
}

func TestPillarIndex(t *testing.T) {
	html, err := PillarIndex(fixturePillar())
	require.NoError(t, err)
	doc := parse(t, string(html))

	require.Equal(t, "Algorithms", doc.Find(".pillar-index h1").Text())

	var views, sorts, tags []string
	doc.Find(".blog-view-btn").Each(func(_ int, s *goquery.Selection) { v, _ := s.Attr("data-view"); views = append(views, v) })
	doc.Find(".blog-sort-btn").Each(func(_ int, s *goquery.Selection) { v, _ := s.Attr("data-sort"); sorts = append(sorts, v) })
	doc.Find(".blog-tag-btn").Each(func(_ int, s *goquery.Selection) { v, _ := s.Attr("data-tag"); tags = append(tags, v) })
	require.Equal(t, []string{"topic", "date"}, views)
	require.Equal(t, []string{"newest", "oldest"}, sorts)
	require.Equal(t, []string{"all", "Basics", `say "hi", ok`, "Advanced"}, tags)

	byTopic := doc.Find(".by-topic")
	_, hidden := byTopic.Attr("hidden")
	require.False(t, hidden)
	require.Equal(t, 2, byTopic.Find(".pillar-section").Length())
	require.Equal(t, 3, byTopic.Find(".pillar-topic-card").Length())

	byDate := doc.Find(".by-date")
	_, hidden = byDate.Attr("hidden")
	require.True(t, hidden)
	var order []string
	byDate.Find(".pillar-topic-title").Each(func(_ int, s *goquery.Selection) { order = append(order, s.Text()) })
	require.Equal(t, []string{"Graphs & Trees", "Heaps", "Sorting"}, order)

	first := byTopic.Find(".pillar-topic-card").First()
	dataTags, _ := first.Attr("data-tags")
	require.Equal(t, `["Basics","say \"hi\", ok"]`, dataTags)
	dataDate, _ := first.Attr("data-date")
	require.Equal(t, "2024-04-02T12:00:00Z", dataDate)
	href, _ := first.Attr("href")
	require.Equal(t, "/algorithms/sorting.html", href)
}

func TestRecentPosts(t *testing.T) {
	p := fixturePillar()
	html, err := RecentPosts([]*content.Post{p.Posts[2], p.Posts[0]}, map[string]string{"algorithms": "Algorithms"})
	require.NoError(t, err)
	doc := parse(t, string(html))

	cards := doc.Find(".recent-post")
	require.Equal(t, 2, cards.Length())
	require.Equal(t, "Graphs & Trees", cards.Eq(0).Find(".recent-post-title").Text())
	require.Equal(t, "Algorithms", cards.Eq(0).Find(".recent-post-pillar").Text())
	require.Equal(t, "April 9, 2024", cards.Eq(0).Find(".recent-post-date").Text())
	require.Equal(t, 2, cards.Eq(1).Find(".recent-post-tag").Length())

	empty, err := RecentPosts(nil, nil)
	require.NoError(t, err)
	require.Empty(t, strings.TrimSpace(string(empty)))
}
