// Package markdown converts post bodies to HTML and derives the data pages
// are decorated with: heading slugs, the table of contents and read time.
package markdown
