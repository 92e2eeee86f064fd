// Package render produces the text-only reader page.
package render

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hyperifyio/eggcracker/internal/domains"
)

// ContentSecurityPolicy is sent with every rendered page. It denies every
// image, media, object and frame source.
const ContentSecurityPolicy = "default-src 'self'; img-src 'none'; media-src 'none'; object-src 'none'; frame-src 'none'; style-src 'unsafe-inline' 'self';"

// PageTemplate is the template name handlers pass to echo.Context.Render.
const PageTemplate = "page"

// FetchedLayout formats the fetch timestamp.
const FetchedLayout = "2006-01-02 15:04 UTC"

// fallbackHost is displayed when the source URL has no hostname.
const fallbackHost = "source"

// Page is the data rendered into the shell. All fields are plain text;
// escaping happens in the template.
type Page struct {
	Title     string
	SourceURL string
	Host      string
	Fetched   time.Time
	Excerpt   string
}

// NewPage builds a Page for sourceURL, deriving the display host.
func NewPage(title, sourceURL, excerptText string, fetched time.Time) Page {
	host := fallbackHost
	if u, err := url.Parse(sourceURL); err == nil && u.Hostname() != "" {
		host = domains.DisplayHost(u.Hostname())
	}
	return Page{
		Title:     title,
		SourceURL: sourceURL,
		Host:      host,
		Fetched:   fetched,
		Excerpt:   excerptText,
	}
}

// Paragraphs splits the excerpt at line breaks.
func (p Page) Paragraphs() []string {
	return strings.Split(p.Excerpt, "\n")
}

// FetchedAt returns the fetch time in UTC as YYYY-MM-DD HH:MM UTC.
func (p Page) FetchedAt() string {
	return p.Fetched.UTC().Format(FetchedLayout)
}

const shell = `<!doctype html>
<html lang="en"><head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Inter,Arial,sans-serif;line-height:1.6;max-width:880px;margin:2rem auto;padding:1rem;color:#111;background:#fff}
h1{font-size:1.5rem;margin:.25rem 0 .75rem}
.meta{color:#666;font-size:.95rem;margin-bottom:1rem}
a{color:#0a58ca;text-decoration:none}
a:hover{text-decoration:underline}
hr{border:0;border-top:1px solid #ddd;margin:1rem 0}
img,video,picture,iframe,canvas,svg,figure{display:none!important}
</style>
</head><body>
<header>
  <h1>{{.Title}}</h1>
  <p class="meta">Text-only preview • Source: <a href="{{.SourceURL}}">{{.Host}}</a> • Fetched: {{.FetchedAt}}</p>
</header>
<main>
  {{range .Paragraphs}}<p>{{.}}</p>{{end}}
  <p style="margin-top:1rem"><a href="{{.SourceURL}}">Read the full article on {{.Host}}</a></p>
</main>
<footer class="meta" style="margin-top:2rem;border-top:1px solid #ddd;padding-top:.75rem">
  © Eggcracker · text-only preview. Media blocked by design.
</footer>
</body></html>
`

// Renderer executes the page shell. It is safe for concurrent use and
// satisfies echo.Renderer.
type Renderer struct {
	tmpl *template.Template
}

// New parses the page shell.
func New() *Renderer {
	return &Renderer{tmpl: template.Must(template.New(PageTemplate).Parse(shell))}
}

// Page writes p as a complete HTML document.
func (r *Renderer) Page(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, PageTemplate, p)
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	if name != PageTemplate {
		return fmt.Errorf("render: unknown template %q", name)
	}
	switch p := data.(type) {
	case Page:
		return r.Page(w, p)
	case *Page:
		return r.Page(w, *p)
	default:
		return fmt.Errorf("render: unexpected data %T", data)
	}
}
