package content

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GroupDeclared builds sections in descriptor order. Topics without a post
// are left out, as are sections that end up empty.
func GroupDeclared(desc Descriptor, posts map[string]*Post) []Section {
	var sections []Section
	for _, ds := range desc.Sections {
		section := Section{Name: ds.Name}
		for _, topic := range ds.Topics {
			if post, ok := posts[topic.Slug]; ok {
				section.Posts = append(section.Posts, post)
			}
		}
		if len(section.Posts) > 0 {
			sections = append(sections, section)
		}
	}
	return sections
}

// GroupByTag builds one section per distinct tag. Sections are ordered by
// tag name ignoring case; posts are newest first, ties broken by slug.
func GroupByTag(posts []*Post) []Section {
	byTag := map[string][]*Post{}
	for _, post := range posts {
		for _, tag := range post.Tags {
			byTag[tag] = append(byTag[tag], post)
		}
	}

	names := make([]string, 0, len(byTag))
	for tag := range byTag {
		names = append(names, tag)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		members := byTag[name]
		sortNewestFirst(members)
		sections = append(sections, Section{Name: name, Posts: members})
	}
	return sections
}

func sortNewestFirst(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Published.Equal(posts[j].Published) {
			return posts[i].Published.After(posts[j].Published)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

// TitleFromSlug turns "two-phase_commit" into "Two Phase Commit".
func TitleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}
