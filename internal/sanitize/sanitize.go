// Package sanitize reduces HTML fragments to a fixed tag and attribute
// vocabulary using a bluemonday allow-list policy.
package sanitize

import (
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TagSpec is the allowed vocabulary: element names, attributes permitted on
// every allowed element, and attributes permitted only on specific elements.
type TagSpec struct {
	Elements   []string
	Global     []string
	PerElement map[string][]string
}

// DefaultTagSpec returns a fresh copy of the text-only vocabulary. Anchors
// keep href, title and rel; target is not permitted.
func DefaultTagSpec() TagSpec {
	return TagSpec{
		Elements: []string{
			"a", "p", "div", "span", "section", "article", "header", "footer",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"ul", "ol", "li", "blockquote", "pre", "code",
			"strong", "em", "small", "time", "br", "hr",
		},
		Global: []string{"class"},
		PerElement: map[string][]string{
			"a": {"href", "title", "rel"},
		},
	}
}

// Allows reports whether the spec permits element tag.
func (s TagSpec) Allows(tag string) bool {
	tag = strings.ToLower(tag)
	for _, e := range s.Elements {
		if e == tag {
			return true
		}
	}
	return false
}

// Sanitizer applies a compiled policy. It is safe for concurrent use.
type Sanitizer struct {
	spec   TagSpec
	policy *bluemonday.Policy
}

// New compiles spec into a policy. Disallowed elements are unwrapped and
// their text kept, except for containers bluemonday drops whole (script,
// style, iframe, object and similar). Link targets must be relative or use
// http, https or mailto.
func New(spec TagSpec) *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	// AllowStandardURLs turns on nofollow; anchors keep the rel they came with.
	p.RequireNoFollowOnLinks(false)
	p.AllowElements(spec.Elements...)
	if len(spec.Global) > 0 {
		p.AllowAttrs(spec.Global...).Globally()
	}

	tags := make([]string, 0, len(spec.PerElement))
	for tag := range spec.PerElement {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		if attrs := spec.PerElement[tag]; len(attrs) > 0 {
			p.AllowAttrs(attrs...).OnElements(tag)
		}
	}
	return &Sanitizer{spec: spec, policy: p}
}

// Default is New(DefaultTagSpec()).
func Default() *Sanitizer {
	return New(DefaultTagSpec())
}

// Spec returns the vocabulary the sanitizer was built from.
func (s *Sanitizer) Spec() TagSpec {
	return s.spec
}

// Sanitize returns fragment restricted to the allowed vocabulary. It never
// fails; any input yields some output, possibly empty.
func (s *Sanitizer) Sanitize(fragment string) string {
	if fragment == "" {
		return ""
	}
	return s.policy.Sanitize(fragment)
}
