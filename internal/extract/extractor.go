package extract

import "net/url"

// Extractor locates the main content of a document. Implementations must
// never fail: problems degrade to a placeholder Article.
type Extractor interface {
	Extract(raw string, pageURL *url.URL) Article
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(raw string, pageURL *url.URL) Article

func (f ExtractorFunc) Extract(raw string, pageURL *url.URL) Article { return f(raw, pageURL) }

// Default is the readability-then-density strategy used by FromHTML.
var Default Extractor = ExtractorFunc(FromHTML)
