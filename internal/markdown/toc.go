package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TocItem is one entry of a page's table of contents.
type TocItem struct {
	ID    string
	Text  string
	Level int
}

// ExtractTOC lists the h2 and h3 elements of rendered HTML that carry an id,
// in document order. Text is the heading's text content with markup stripped.
func ExtractTOC(rendered []byte) []TocItem {
	items := []TocItem{}
	if len(bytes.TrimSpace(rendered)) == 0 {
		return items
	}

	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return items
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.H2 || n.DataAtom == atom.H3) {
			if id := getAttr(n, "id"); id != "" {
				level := 2
				if n.DataAtom == atom.H3 {
					level = 3
				}
				items = append(items, TocItem{ID: id, Text: strings.TrimSpace(extractText(n)), Level: level})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return items
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractText(c))
	}
	return b.String()
}
