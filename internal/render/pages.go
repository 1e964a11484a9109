package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/pillarsite/internal/config"
	"git.home.luguber.info/inful/pillarsite/internal/content"
	"git.home.luguber.info/inful/pillarsite/internal/markdown"
)

// Page template file names looked up in the template directory.
const (
	BaseTemplate  = "base.html"
	HomeTemplate  = "home.html"
	TopicTemplate = "topic.html"
)

// PillarLink is a navigation entry for one pillar.
type PillarLink struct {
	Slug string
	Name string
	Href string
}

// SiteInfo is available to every page template.
type SiteInfo struct {
	Title       string
	Author      string
	Description string
	Pillars     []PillarLink
}

// TopicPage is the context of topic.html.
type TopicPage struct {
	Sidebar    template.HTML
	Breadcrumb template.HTML
	Pillar     string
	Title      string
	Date       string
	EditDate   string
	ReadTime   string
	Content    template.HTML
	TOC        template.HTML
	HasTOC     bool
}

// HomePage is the context of home.html.
type HomePage struct {
	Site        SiteInfo
	RecentPosts template.HTML
}

// BasePage is the context of base.html, which wraps every page.
type BasePage struct {
	Title       string
	Description string
	Content     template.HTML
	Site        SiteInfo

	nav      string
	pillar   string
	declared []string
}

// NavClass returns "active" for the page's navigation target and "" for any
// other declared target. Undeclared targets are an error so a typo in a
// template fails the build.
func (p BasePage) NavClass(name string) (string, error) {
	if !slices.Contains(p.declared, name) {
		return "", fmt.Errorf("undeclared nav target %q (declared: %s)", name, strings.Join(p.declared, ", "))
	}
	if name == p.nav {
		return "active", nil
	}
	return "", nil
}

// PillarClass returns "active" when slug names the pillar the page belongs to.
func (p BasePage) PillarClass(slug string) string {
	if p.pillar != "" && slug == p.pillar {
		return "active"
	}
	return ""
}

// Composer turns rendered posts into complete pages.
type Composer struct {
	site  config.SiteConfig
	info  SiteInfo
	pages map[string]*template.Template
}

// NewComposer loads the page templates from templateDir.
func NewComposer(templateDir string, site config.SiteConfig, pillars []*content.Pillar) (*Composer, error) {
	c := &Composer{
		site:  site,
		pages: make(map[string]*template.Template, 3),
		info: SiteInfo{
			Title:       site.Title,
			Author:      site.Author,
			Description: site.Description,
		},
	}
	for _, p := range pillars {
		c.info.Pillars = append(c.info.Pillars, PillarLink{Slug: p.Slug, Name: p.Name, Href: PillarURL(p)})
	}

	for _, name := range []string{BaseTemplate, HomeTemplate, TopicTemplate} {
		path := filepath.Join(templateDir, name)
		raw, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, path)
		}
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", path, err)
		}
		tpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplateParse, path, err)
		}
		c.pages[name] = tpl
	}
	return c, nil
}

func (c *Composer) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pages[name].Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %w", ErrTemplateExecute, name, err)
	}
	return buf.Bytes(), nil
}

func (c *Composer) wrap(title, description, nav, pillar string, body []byte) ([]byte, error) {
	return c.execute(BaseTemplate, BasePage{
		Title:       title,
		Description: description,
		// #nosec G203 -- body is output of our own templates
		Content:  template.HTML(body),
		Site:     c.info,
		nav:      nav,
		pillar:   pillar,
		declared: c.site.Nav,
	})
}

func (c *Composer) pageTitle(parts ...string) string {
	return strings.Join(append(parts, c.site.Title), " | ")
}

// Topic renders a post page. rendered is the post body converted to HTML.
func (c *Composer) Topic(pillar *content.Pillar, post *content.Post, rendered []byte) ([]byte, error) {
	sidebar, err := Sidebar(pillar, post.Slug)
	if err != nil {
		return nil, err
	}
	breadcrumb, err := Breadcrumb(pillar, post.Section, post.Title)
	if err != nil {
		return nil, err
	}
	items := markdown.ExtractTOC(rendered)
	toc, err := TOC(items)
	if err != nil {
		return nil, err
	}

	body, err := c.execute(TopicTemplate, TopicPage{
		Sidebar:    sidebar,
		Breadcrumb: breadcrumb,
		Pillar:     strings.ToUpper(pillar.Name),
		Title:      post.Title,
		Date:       FormatDate(post.Published),
		EditDate:   FormatDate(post.Edited),
		ReadTime:   markdown.ReadTime(post.Body),
		// #nosec G203 -- markdown output, raw HTML passthrough is intended
		Content: template.HTML(rendered),
		TOC:     toc,
		HasTOC:  len(items) > 0,
	})
	if err != nil {
		return nil, err
	}
	return c.wrap(c.pageTitle(post.Title, pillar.Name),
		fmt.Sprintf("Learn about %s in %s.", post.Title, pillar.Name),
		c.site.PillarNav, pillar.Slug, body)
}

// PillarIndex renders a pillar's index page.
func (c *Composer) PillarIndex(pillar *content.Pillar) ([]byte, error) {
	body, err := PillarIndex(pillar)
	if err != nil {
		return nil, err
	}
	return c.wrap(c.pageTitle(pillar.Name),
		fmt.Sprintf("%s topics.", pillar.Name),
		c.site.PillarNav, pillar.Slug, []byte(body))
}

// Home renders the homepage with the given recent posts.
func (c *Composer) Home(site *content.Site, recent []*content.Post) ([]byte, error) {
	names := make(map[string]string, len(site.Pillars))
	for _, p := range site.Pillars {
		names[p.Slug] = p.Name
	}
	list, err := RecentPosts(recent, names)
	if err != nil {
		return nil, err
	}
	body, err := c.execute(HomeTemplate, HomePage{Site: c.info, RecentPosts: list})
	if err != nil {
		return nil, err
	}
	return c.wrap(c.site.Title, c.site.Description, c.site.HomeNav, "", body)
}
