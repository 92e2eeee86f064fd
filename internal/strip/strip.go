// Package strip removes media-embedding markup from HTML fragments before
// sanitization. It works on text with pre-compiled patterns and is not an
// HTML parser: constructs it cannot match pass through unchanged for the
// sanitizer to handle.
package strip

import (
	"regexp"
	"strings"
)

// MediaTags lists the elements removed together with their content.
var MediaTags = []string{"img", "picture", "video", "audio", "iframe", "svg", "canvas", "figure"}

type tagPatterns struct {
	block *regexp.Regexp
	open  *regexp.Regexp
	close *regexp.Regexp
}

// Go's regexp has no backreferences, so each tag gets its own block pattern
// to pair an opening tag with the matching close.
var (
	mediaPatterns = compileTagPatterns(MediaTags)

	backgroundImageRe = regexp.MustCompile(`(?i)background-image\s*:\s*url\(\s*(?:"[^"]*"|'[^']*'|[^)]*)\s*\)\s*;?`)
)

func compileTagPatterns(tags []string) []tagPatterns {
	out := make([]tagPatterns, 0, len(tags))
	for _, t := range tags {
		name := regexp.QuoteMeta(strings.ToLower(t))
		out = append(out, tagPatterns{
			block: regexp.MustCompile(`(?is)<` + name + `\b[^>]*>.*?</` + name + `\s*>`),
			open:  regexp.MustCompile(`(?i)<` + name + `\b[^>]*>`),
			close: regexp.MustCompile(`(?i)</` + name + `\s*>`),
		})
	}
	return out
}

// Media removes media elements and inline background-image declarations.
// Paired blocks go first so that a later void-tag pass cannot leave an
// orphaned closing tag behind.
func Media(fragment string) string {
	if fragment == "" {
		return ""
	}
	out := fragment
	for _, p := range mediaPatterns {
		out = p.block.ReplaceAllString(out, "")
	}
	for _, p := range mediaPatterns {
		out = p.open.ReplaceAllString(out, "")
		out = p.close.ReplaceAllString(out, "")
	}
	return BackgroundImages(out)
}

// BackgroundImages drops `background-image: url(...)` declarations from any
// inline style text, regardless of quoting and spacing.
func BackgroundImages(s string) string {
	return backgroundImageRe.ReplaceAllString(s, "")
}
