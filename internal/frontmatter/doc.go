// Package frontmatter separates the `---` delimited header of a markdown
// file from its body and extracts the title and tags a page is built from.
package frontmatter
