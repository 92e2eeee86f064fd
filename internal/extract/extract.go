package extract

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// PlaceholderTitle is used when a document yields no usable title.
const PlaceholderTitle = "Article"

// Method names the strategy that produced an Article.
type Method string

const (
	MethodReadability Method = "readability"
	MethodDensity     Method = "density"
	MethodNone        Method = "none"
)

// Article is the main content located in a document. Body is an HTML
// fragment that has not been sanitized.
type Article struct {
	Title  string
	Body   string
	Method Method
	// Err records why extraction degraded, if it did. It is informational
	// only; FromHTML never fails.
	Err error
}

// FromHTML locates the article body and title in raw HTML. It runs
// readability scoring first and falls back to a paragraph-density scorer
// when readability fails or finds nothing. pageURL may be nil.
//
// FromHTML never returns an error and never panics: any internal failure
// yields an Article with PlaceholderTitle and an empty body.
func FromHTML(raw string, pageURL *url.URL) (a Article) {
	defer func() {
		if r := recover(); r != nil {
			a = Article{Title: PlaceholderTitle, Method: MethodNone, Err: fmt.Errorf("extract panic: %v", r)}
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return Article{Title: PlaceholderTitle, Method: MethodNone}
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil || doc == nil {
		return Article{Title: PlaceholderTitle, Method: MethodNone, Err: fmt.Errorf("parse html: %w", err)}
	}

	var readErr error
	article, err := readability.FromReader(strings.NewReader(raw), pageURL)
	if err == nil && strings.TrimSpace(article.Content) != "" && hasText(article.TextContent) {
		return Article{
			Title:  chooseTitle(article.Title, doc),
			Body:   article.Content,
			Method: MethodReadability,
		}
	}
	if err != nil {
		readErr = fmt.Errorf("readability: %w", err)
	}

	body := densityBody(doc)
	if body == "" {
		return Article{Title: chooseTitle("", doc), Method: MethodNone, Err: readErr}
	}
	return Article{Title: chooseTitle("", doc), Body: body, Method: MethodDensity, Err: readErr}
}

// chooseTitle prefers the readability title, then <title>, then the first
// <h1> with text, then PlaceholderTitle.
func chooseTitle(preferred string, doc *html.Node) string {
	for _, t := range []string{preferred, findTitle(doc), findHeading(doc)} {
		if t = cleanTitle(t); t != "" {
			return t
		}
	}
	return PlaceholderTitle
}

func cleanTitle(s string) string {
	return norm.NFC.String(collapseSpaces(s))
}

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil {
		return ""
	}
	return textContent(t)
}

func findHeading(n *html.Node) string {
	var res string
	var dfs func(*html.Node) bool
	dfs = func(cur *html.Node) bool {
		if cur.Type == html.ElementNode && cur.Data == "h1" {
			if t := strings.TrimSpace(textContent(cur)); t != "" {
				res = t
				return true
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if dfs(c) {
				return true
			}
		}
		return false
	}
	dfs(n)
	return res
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(c.Data)
			case c.Type == html.ElementNode && skipTags[c.Data]:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

func hasText(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
