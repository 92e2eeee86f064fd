package excerpt

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxChars is the character budget used when none is configured.
const DefaultMaxChars = 2500

// Ellipsis marks a truncated excerpt.
const Ellipsis = "…"

// Excerpt is a bounded plain-text rendering of article content.
type Excerpt struct {
	Text      string
	Truncated bool
}

// Len returns the length of Text in characters (runes).
func (e Excerpt) Len() int {
	return utf8.RuneCountInString(e.Text)
}

// FromHTML reduces sanitized markup to text and builds an excerpt from it.
func FromHTML(fragment string, limit int) Excerpt {
	return Build(Text(fragment), limit)
}

// Text returns the concatenated text nodes of an HTML fragment with entities
// decoded. Tags contribute nothing, not even whitespace.
func Text(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return doc.Text()
}

// Build collapses whitespace in text and truncates it to limit characters,
// appending Ellipsis when anything was cut. A non-positive limit means
// DefaultMaxChars.
func Build(text string, limit int) Excerpt {
	if limit <= 0 {
		limit = DefaultMaxChars
	}
	t := Collapse(text)
	if utf8.RuneCountInString(t) <= limit {
		return Excerpt{Text: t}
	}
	return Excerpt{Text: truncateRunes(t, limit) + Ellipsis, Truncated: true}
}

// Collapse replaces every run of whitespace with a single space and trims
// both ends.
func Collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
