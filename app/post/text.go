package post

import (
	"html"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Upstream truncation marker appended to generated excerpts.
const truncationMarker = "[&hellip;]"

var excerptReplacer = strings.NewReplacer(
	"<p>", "",
	"</p>", "",
	truncationMarker, "",
)

// SanitizeExcerpt strips paragraph markup and the truncation marker from
// an excerpt meant for list and preview display.
func SanitizeExcerpt(s string) string {
	return strings.TrimSpace(excerptReplacer.Replace(s))
}

// CleanTitle turns a rendered title into display text.
func CleanTitle(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(norm.NFC.String(s))
}
