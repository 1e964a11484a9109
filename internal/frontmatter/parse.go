package frontmatter

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Frontmatter is the page metadata a markdown file may declare.
type Frontmatter struct {
	Title string
	Tags  []string
}

// Parse extracts title and tags from content and returns the body that
// follows the header. It never fails: a missing or unclosed header yields
// empty metadata and the unchanged input, and a header that is not valid
// YAML is read line by line for `title:` and `tags: [..]`.
func Parse(content []byte) (Frontmatter, []byte) {
	raw, body, had, _, err := Split(content)
	if err != nil || !had {
		return Frontmatter{}, content
	}

	var fm Frontmatter
	if fields, yamlErr := ParseYAML(raw); yamlErr == nil {
		fm = fromFields(fields)
	} else {
		fm = scanLines(raw)
	}
	fm.Tags = dedupeTags(fm.Tags)
	return fm, body
}

func fromFields(fields map[string]any) Frontmatter {
	var fm Frontmatter
	switch title := fields["title"].(type) {
	case nil:
	case string:
		fm.Title = strings.TrimSpace(title)
	default:
		fm.Title = fmt.Sprint(title)
	}

	switch tags := fields["tags"].(type) {
	case string:
		fm.Tags = splitScalar(tags)
	case []any:
		for _, tag := range tags {
			if tag == nil {
				continue
			}
			fm.Tags = append(fm.Tags, fmt.Sprint(tag))
		}
	}
	return fm
}

// scanLines is the fallback for headers YAML rejects, e.g. `title: A: B`.
func scanLines(raw []byte) Frontmatter {
	var fm Frontmatter
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "title":
			fm.Title = strings.TrimSpace(unquote(value))
		case "tags":
			fm.Tags = bracketList(value)
		}
	}
	return fm
}

// bracketList reads `[a, "b", 'c']`. Anything else is malformed and yields no tags.
func bracketList(value string) []string {
	if len(value) < 2 || value[0] != '[' || value[len(value)-1] != ']' {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value[1:len(value)-1], ",") {
		items = append(items, unquote(strings.TrimSpace(item)))
	}
	return items
}

// splitScalar reads an unbracketed `tags: a, "b"` value as a comma list.
func splitScalar(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		items = append(items, unquote(strings.TrimSpace(item)))
	}
	return items
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
