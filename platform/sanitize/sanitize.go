// Package sanitize reduces user supplied text to plain text before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var tag = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup and decodes entities. Tags hidden behind entities
// such as "&lt;script&gt;" are removed as well.
func StripHTML(s string) string {
	s = tag.ReplaceAllString(s, "")
	s = tag.ReplaceAllString(html.UnescapeString(s), "")
	return strings.TrimSpace(s)
}

// Text is StripHTML with every run of whitespace folded to one space.
func Text(s string) string {
	return strings.Join(strings.Fields(StripHTML(s)), " ")
}
