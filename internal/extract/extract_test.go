package extract

import (
	"net/url"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(tb testing.TB, s string) *html.Node {
	tb.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		tb.Fatalf("parse: %v", err)
	}
	return doc
}

const longParagraph = "The committee met on Tuesday, after weeks of delay, to review the proposal in full. " +
	"Members raised concerns about cost, schedule, and the long-term maintenance burden of the new system."

func TestFromHTML_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		a := FromHTML(in, nil)
		if a.Title != PlaceholderTitle || a.Body != "" || a.Method != MethodNone {
			t.Fatalf("FromHTML(%q) = %+v, want placeholder article", in, a)
		}
	}
}

func TestFromHTML_TitleFromTitleTag(t *testing.T) {
	doc := `<!doctype html><html><head><title>Understanding Go Interfaces</title></head>
	<body><article><p>` + longParagraph + `</p><p>` + longParagraph + `</p></article></body></html>`
	u, _ := url.Parse("https://example.com/post")
	a := FromHTML(doc, u)
	if a.Title != "Understanding Go Interfaces" {
		t.Fatalf("unexpected title %q", a.Title)
	}
	if !strings.Contains(a.Body, "The committee met on Tuesday") {
		t.Fatalf("expected article paragraph in body, got %q", a.Body)
	}
	if a.Method == MethodNone {
		t.Fatalf("expected an extraction method, got none")
	}
}

func TestFromHTML_TitleFallsBackToHeading(t *testing.T) {
	doc := `<html><body><article><h1>  Fallback
	Heading </h1><p>` + longParagraph + `</p></article></body></html>`
	a := FromHTML(doc, nil)
	if a.Title != "Fallback Heading" {
		t.Fatalf("expected h1 title, got %q", a.Title)
	}
}

func TestFromHTML_PlaceholderTitle(t *testing.T) {
	doc := `<html><body><div><p>` + longParagraph + `</p></div></body></html>`
	a := FromHTML(doc, nil)
	if a.Title != PlaceholderTitle {
		t.Fatalf("expected placeholder title, got %q", a.Title)
	}
}

func TestFromHTML_DropsScripts(t *testing.T) {
	doc := `<html><head><title>Script Handling Article</title><script>var tracking = 1;</script></head>
	<body><article><p>` + longParagraph + `</p><script>evil()</script><p>` + longParagraph + `</p></article></body></html>`
	a := FromHTML(doc, nil)
	if strings.Contains(a.Body, "evil()") || strings.Contains(a.Body, "tracking") {
		t.Fatalf("script content leaked into body: %q", a.Body)
	}
}

func TestFromHTML_MalformedNeverPanics(t *testing.T) {
	inputs := []string{
		"<div><div><p>unclosed",
		"</p></div></body></html>",
		"<<<>>>",
		"<html><head><title>",
		strings.Repeat("<div>", 5000) + "deep" + strings.Repeat("</span>", 100),
		strings.Repeat("<b><i>", 2000) + "x",
		"\x00\xff\xfe<p>bytes</p>",
		"<table><tr><td><p>" + longParagraph + "</td></tr>",
	}
	for _, in := range inputs {
		a := FromHTML(in, nil)
		if a.Title == "" {
			t.Fatalf("title must never be empty, input %q", in[:min(len(in), 40)])
		}
	}
}

func TestFromHTML_NestingTooDeepDegrades(t *testing.T) {
	const depth = 1000 // past the parser's 512 open element limit
	raw := "<html><head><title>Deep</title></head><body>" + strings.Repeat("<div>", depth) +
		"<p>" + longParagraph + "</p>" + strings.Repeat("</div>", depth) + "</body></html>"
	a := FromHTML(raw, nil)
	if a.Method != MethodNone || a.Body != "" {
		t.Fatalf("expected placeholder article, got method=%s body=%d bytes", a.Method, len(a.Body))
	}
	if a.Title != PlaceholderTitle {
		t.Fatalf("expected placeholder title, got %q", a.Title)
	}
	if a.Err == nil {
		t.Fatalf("expected the parse failure to be recorded")
	}
}

func TestChooseTitle_Order(t *testing.T) {
	doc := parse(t, `<html><head><title> Head  Title </title></head><body><h1></h1><h1>Heading</h1></body></html>`)
	if got := chooseTitle("Readable", doc); got != "Readable" {
		t.Fatalf("preferred title should win, got %q", got)
	}
	if got := chooseTitle("  ", doc); got != "Head Title" {
		t.Fatalf("expected <title>, got %q", got)
	}
	noTitle := parse(t, `<html><body><h1></h1><h1>Heading <em>two</em></h1></body></html>`)
	if got := chooseTitle("", noTitle); got != "Heading two" {
		t.Fatalf("expected first non-empty h1, got %q", got)
	}
	empty := parse(t, `<html><body><p>x</p></body></html>`)
	if got := chooseTitle("", empty); got != PlaceholderTitle {
		t.Fatalf("expected placeholder, got %q", got)
	}
}

func TestCleanTitle_NormalizesNFC(t *testing.T) {
	decomposed := "Cafe\u0301  Review"
	if got := cleanTitle(decomposed); got != "Caf\u00e9 Review" {
		t.Fatalf("expected NFC composed title, got %q", got)
	}
}

func TestDensityBody_PrefersParagraphRichContainer(t *testing.T) {
	doc := parse(t, `<html><body>
	<div class="sidebar"><p><a href="/1">A link that is long enough to count here</a></p></div>
	<div class="content"><p>`+longParagraph+`</p><p>`+longParagraph+`</p></div>
	<div class="footer"><p>Copyright notice for the whole website, all rights reserved.</p></div>
	</body></html>`)
	got := densityBody(doc)
	if !strings.HasPrefix(got, `<div class="content">`) {
		t.Fatalf("expected content container, got %q", got)
	}
	if strings.Contains(got, "A link that is long") || strings.Contains(got, "Copyright") {
		t.Fatalf("boilerplate leaked into body: %q", got)
	}
}

func TestDensityBody_PenalizesBoilerplateAncestors(t *testing.T) {
	doc := parse(t, `<html><body>
	<footer><div><p>`+longParagraph+`</p><p>`+longParagraph+`</p></div></footer>
	<section><p>`+longParagraph+`</p><p>`+longParagraph+`</p></section>
	</body></html>`)
	got := densityBody(doc)
	if !strings.HasPrefix(got, "<section>") {
		t.Fatalf("expected section outside footer to win, got %q", got)
	}
}

func TestDensityBody_PrunesNonContent(t *testing.T) {
	doc := parse(t, `<html><body><article>
	<p>`+longParagraph+`</p>
	<script>tracker()</script>
	<nav><a href="/">Home</a></nav>
	<div class="cookie-banner">Accept all cookies</div>
	<!-- comment -->
	<form><input name="q"></form>
	<p>`+longParagraph+`</p>
	</article></body></html>`)
	got := densityBody(doc)
	for _, bad := range []string{"tracker()", "Home", "Accept all cookies", "comment", "<form", "<input"} {
		if strings.Contains(got, bad) {
			t.Fatalf("expected %q pruned, got %q", bad, got)
		}
	}
	if !strings.Contains(got, "The committee met") {
		t.Fatalf("expected paragraphs kept, got %q", got)
	}
}

func TestDensityBody_NoParagraphs(t *testing.T) {
	doc := parse(t, `<html><body><div><span>short</span></div><ul><li>item</li></ul></body></html>`)
	if got := densityBody(doc); got != "" {
		t.Fatalf("expected no body, got %q", got)
	}
}

func TestDensityBody_BodyCandidateRendersChildren(t *testing.T) {
	doc := parse(t, `<html><body><p>`+longParagraph+`</p></body></html>`)
	got := densityBody(doc)
	if strings.Contains(got, "<body") {
		t.Fatalf("body wrapper should not be rendered: %q", got)
	}
	if !strings.HasPrefix(got, "<p>") {
		t.Fatalf("expected paragraph fragment, got %q", got)
	}
}
