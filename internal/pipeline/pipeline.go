// Package pipeline chains extraction, media stripping, sanitization and
// excerpt building for one fetched document.
package pipeline

import (
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/eggcracker/internal/excerpt"
	"github.com/hyperifyio/eggcracker/internal/extract"
	"github.com/hyperifyio/eggcracker/internal/sanitize"
	"github.com/hyperifyio/eggcracker/internal/strip"
)

// Result is the output of one pipeline run.
type Result struct {
	Title string
	// Fragment is the sanitized article markup.
	Fragment string
	Excerpt  excerpt.Excerpt
	Method   extract.Method
}

// Pipeline holds only read-only collaborators and may be shared across
// goroutines.
type Pipeline struct {
	extractor extract.Extractor
	sanitizer *sanitize.Sanitizer
	maxChars  int
}

// New returns a Pipeline. A nil sanitizer selects the default tag spec.
func New(s *sanitize.Sanitizer, maxChars int) *Pipeline {
	if s == nil {
		s = sanitize.Default()
	}
	if maxChars <= 0 {
		maxChars = excerpt.DefaultMaxChars
	}
	return &Pipeline{extractor: extract.Default, sanitizer: s, maxChars: maxChars}
}

// WithExtractor returns a copy of p that locates content with e.
func (p *Pipeline) WithExtractor(e extract.Extractor) *Pipeline {
	cp := *p
	if e != nil {
		cp.extractor = e
	}
	return &cp
}

// MaxChars returns the excerpt budget.
func (p *Pipeline) MaxChars() int { return p.maxChars }

// Clean strips media from an HTML fragment and sanitizes the result.
func (p *Pipeline) Clean(fragment string) string {
	return p.sanitizer.Sanitize(strip.Media(fragment))
}

// Run processes raw HTML fetched from pageURL (which may be nil). It never
// fails: extraction problems degrade to a placeholder title and empty body.
func (p *Pipeline) Run(raw string, pageURL *url.URL) Result {
	article := p.extractor.Extract(raw, pageURL)
	if article.Err != nil {
		log.Warn().Err(article.Err).Str("method", string(article.Method)).Msg("extraction degraded")
	}
	fragment := p.Clean(article.Body)
	ex := excerpt.FromHTML(fragment, p.maxChars)
	log.Debug().
		Str("method", string(article.Method)).
		Int("raw_bytes", len(raw)).
		Int("fragment_bytes", len(fragment)).
		Int("excerpt_chars", ex.Len()).
		Bool("truncated", ex.Truncated).
		Msg("pipeline complete")
	return Result{
		Title:    article.Title,
		Fragment: fragment,
		Excerpt:  ex,
		Method:   article.Method,
	}
}
