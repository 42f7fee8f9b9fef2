package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reScript = regexp.MustCompile(`(?i)<script[^>]*>[\s\S]*?</script>`)
	reStyle  = regexp.MustCompile(`(?i)<style[^>]*>[\s\S]*?</style>`)

	stripPolicy = bluemonday.StrictPolicy()
	ugcPolicy   = bluemonday.UGCPolicy()
)

// StripHTML reduces s to plain text with collapsed whitespace.
func StripHTML(s string) string {
	s = html.UnescapeString(s)
	s = reScript.ReplaceAllString(s, "")
	s = reStyle.ReplaceAllString(s, "")
	s = stripPolicy.Sanitize(s)
	// bluemonday escapes entities; we want plain text back.
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeRichText keeps safe formatting markup (lists, emphasis, links) and
// drops scripts, event handlers and unknown elements.
func SanitizeRichText(s string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// FoldText lowercases s and removes diacritics so "José" matches "jose".
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.ToValidUTF8(out, ""))
}

// EscapeRegex quotes user input for use in a Mongo $regex.
func EscapeRegex(s string) string {
	return regexp.QuoteMeta(strings.TrimSpace(s))
}
