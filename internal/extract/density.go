package extract

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Subtrees never considered content.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "title": true, "meta": true, "link": true,
}

// Subtrees pruned from the chosen body before rendering.
var pruneTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"nav": true, "aside": true, "form": true, "button": true, "input": true,
	"select": true, "textarea": true,
}

var candidateTags = map[string]bool{
	"article": true, "main": true, "section": true, "div": true, "td": true, "body": true,
}

var tagWeights = map[string]float64{
	"article": 25, "main": 20, "section": 5, "div": 5,
}

// Candidates nested inside these are penalized.
var boilerplateTags = map[string]bool{
	"nav": true, "aside": true, "footer": true, "header": true, "form": true,
}

const boilerplatePenalty = 25

var (
	positiveHints = []string{"article", "content", "entry", "post", "story", "body", "text", "main"}
	negativeHints = []string{"nav", "menu", "footer", "sidebar", "comment", "share", "social", "banner", "promo", "related", "cookie", "consent", "advert"}
)

// Minimum text length for a paragraph to count toward its container.
const minParagraphChars = 25

type nodeStats struct {
	textLen int
	linkLen int
	commas  int
}

// densityBody scores container elements by the paragraphs they directly hold,
// adjusted by tag and class/id hints and discounted by link density, and
// returns the winner rendered as HTML. It returns "" when no container holds
// a qualifying paragraph.
func densityBody(doc *html.Node) string {
	stats := map[*html.Node]nodeStats{}
	collectStats(doc, false, stats)

	var best *html.Node
	bestScore := 0.0
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inBoilerplate bool) {
		if n.Type == html.ElementNode {
			if skipTags[n.Data] {
				return
			}
			if boilerplateTags[n.Data] {
				inBoilerplate = true
			}
			if candidateTags[n.Data] {
				s := scoreNode(n, stats)
				if inBoilerplate {
					s -= boilerplatePenalty
				}
				if s > bestScore {
					best, bestScore = n, s
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inBoilerplate)
		}
	}
	walk(doc, false)
	if best == nil {
		return ""
	}

	prune(best)
	var b strings.Builder
	if best.Data == "body" {
		// Render children only; a bare <body> inside a fragment is noise.
		for c := best.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&b, c); err != nil {
				return ""
			}
		}
	} else if err := html.Render(&b, best); err != nil {
		return ""
	}
	return strings.TrimSpace(b.String())
}

func scoreNode(n *html.Node, stats map[*html.Node]nodeStats) float64 {
	paragraphs := 0.0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "p", "pre", "blockquote":
			st := stats[c]
			if st.textLen < minParagraphChars {
				continue
			}
			paragraphs += 1 + float64(st.commas) + minFloat(float64(st.textLen)/100, 3)
		}
	}
	if paragraphs == 0 {
		return 0
	}
	score := paragraphs + tagWeights[n.Data] + hintWeight(n)
	st := stats[n]
	if st.textLen > 0 {
		score *= 1 - float64(st.linkLen)/float64(st.textLen)
	}
	return score
}

func hintWeight(n *html.Node) float64 {
	w := 0.0
	for _, attr := range n.Attr {
		if attr.Key != "id" && attr.Key != "class" {
			continue
		}
		val := strings.ToLower(attr.Val)
		if containsAny(val, negativeHints) {
			w -= 25
		}
		if containsAny(val, positiveHints) {
			w += 25
		}
	}
	return w
}

// collectStats fills stats for every element in a single post-order pass.
func collectStats(n *html.Node, inLink bool, stats map[*html.Node]nodeStats) nodeStats {
	var st nodeStats
	switch n.Type {
	case html.TextNode:
		for _, r := range n.Data {
			if r == ',' {
				st.commas++
			}
			if !unicode.IsSpace(r) {
				st.textLen++
			}
		}
		if inLink {
			st.linkLen = st.textLen
		}
		return st
	case html.ElementNode:
		if skipTags[n.Data] {
			return st
		}
		if n.Data == "a" {
			inLink = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cs := collectStats(c, inLink, stats)
		st.textLen += cs.textLen
		st.linkLen += cs.linkLen
		st.commas += cs.commas
	}
	if n.Type == html.ElementNode {
		stats[n] = st
	}
	return st
}

// prune removes non-content subtrees and consent/cookie containers in place.
func prune(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		switch c.Type {
		case html.CommentNode:
			n.RemoveChild(c)
			continue
		case html.ElementNode:
			if pruneTags[c.Data] || isBoilerplateContainer(c) {
				n.RemoveChild(c)
				continue
			}
		}
		prune(c)
	}
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		val := strings.ToLower(attr.Val)
		if containsAny(val, []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
