package sanitize

import (
	"regexp"
	"strings"
	"testing"
)

var unsafeAttrRe = regexp.MustCompile(`(?i)\s(on[a-z]+|style|src|srcset)\s*=`)

func TestSanitize_KeepsAllowedStructure(t *testing.T) {
	s := Default()
	in := `<h1>Title</h1><p>Hello  world</p>`
	if got := s.Sanitize(in); got != in {
		t.Fatalf("Sanitize(%q)=%q, want unchanged", in, got)
	}
}

func TestSanitize_StripsTagsKeepsText(t *testing.T) {
	s := Default()
	got := s.Sanitize(`<p>one <b>two</b> <font color="red">three</font></p><table><tr><td>cell</td></tr></table>`)
	for _, want := range []string{"one", "two", "three", "cell"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected text %q preserved in %q", want, got)
		}
	}
	for _, tag := range []string{"<b>", "<font", "<table", "<td"} {
		if strings.Contains(got, tag) {
			t.Fatalf("disallowed tag %s survived: %q", tag, got)
		}
	}
}

func TestSanitize_DropsScriptAndStyleContent(t *testing.T) {
	s := Default()
	got := s.Sanitize(`<p>keep</p><script>evil()</script><style>p{color:red}</style>`)
	if strings.Contains(got, "evil") || strings.Contains(got, "color:red") {
		t.Fatalf("script/style content leaked: %q", got)
	}
	if !strings.Contains(got, "<p>keep</p>") {
		t.Fatalf("expected paragraph kept: %q", got)
	}
}

func TestSanitize_AttributeAllowlist(t *testing.T) {
	s := Default()
	got := s.Sanitize(`<a href="https://example.com/a" title="t" rel="noopener" target="_blank" onclick="x()" class="c">link</a><p style="color:red" class="lead" id="p1" onmouseover="y()">p</p>`)
	for _, want := range []string{`href="https://example.com/a"`, `title="t"`, `rel="noopener"`, `class="c"`, `class="lead"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %s in %q", want, got)
		}
	}
	for _, bad := range []string{"target", "onclick", "style", "id=", "onmouseover"} {
		if strings.Contains(got, bad) {
			t.Fatalf("disallowed attribute %q survived: %q", bad, got)
		}
	}
}

func TestSanitize_LeavesAnchorRelAlone(t *testing.T) {
	s := Default()
	if got := s.Sanitize(`<a href="http://x">l</a>`); got != `<a href="http://x">l</a>` {
		t.Fatalf("anchor rewritten: %q", got)
	}
	if got := s.Sanitize(`<a href="/a" rel="noopener">l</a>`); got != `<a href="/a" rel="noopener">l</a>` {
		t.Fatalf("rel rewritten: %q", got)
	}
}

func TestSanitize_HrefOnlyOnAnchors(t *testing.T) {
	s := Default()
	got := s.Sanitize(`<p href="https://x.test" title="t" rel="r">x</p>`)
	if got != `<p>x</p>` {
		t.Fatalf("anchor-only attributes leaked to <p>: %q", got)
	}
}

func TestSanitize_RejectsScriptURLs(t *testing.T) {
	s := Default()
	got := s.Sanitize(`<a href="javascript:alert(1)">click</a><a href="JaVaScRiPt:alert(2)">two</a>`)
	if strings.Contains(strings.ToLower(got), "javascript") {
		t.Fatalf("javascript URL survived: %q", got)
	}
	if !strings.Contains(got, "click") || !strings.Contains(got, "two") {
		t.Fatalf("link text should be kept: %q", got)
	}
}

func TestSanitize_ObfuscationVectors(t *testing.T) {
	s := Default()
	inputs := []string{
		`<IMG SRC=x ONERROR=alert(1)>`,
		`<img src=x onerror=alert(1)>`,
		`<ScRiPt>alert(1)</sCrIpT>`,
		`<p onclick='a()' STYLE="x:y">t</p>`,
		`<svg/onload=alert(1)>`,
		`<p><scr<script>ipt>alert(1)</script></p>`,
		`<a href=" javascript:alert(1)">x</a>`,
		`<div><iframe srcdoc="<script>x</script>"></iframe></div>`,
		`<video><source srcset="a.webp"></video>`,
		`<p title="a" onfocus=x autofocus>q`,
		`<object data="x.swf"></object><embed src="y">`,
	}
	for _, in := range inputs {
		got := s.Sanitize(in)
		if unsafeAttrRe.MatchString(got) {
			t.Errorf("unsafe attribute in %q -> %q", in, got)
		}
		low := strings.ToLower(got)
		for _, tag := range []string{"<script", "<img", "<svg", "<iframe", "<video", "<source", "<object", "<embed", "<style"} {
			if strings.Contains(low, tag) {
				t.Errorf("unsafe element %s in %q -> %q", tag, in, got)
			}
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := Default()
	inputs := []string{
		`<article><h1>T &amp; U</h1><p>Hello <em>world</em> &lt;tag&gt;</p></article>`,
		`<div class="x"><ul><li>a</li><li><a href="/rel?a=1&amp;b=2" rel="nofollow">b</a></li></ul></div>`,
		`<p>5 > 3 & 2 < 4</p><br><hr>`,
		`<blockquote><pre><code>if (a &lt; b) {}</code></pre></blockquote>`,
		`<p onclick="x">t<script>y</script><font>f</font></p>`,
		`plain "quoted" text's here`,
	}
	for _, in := range inputs {
		once := s.Sanitize(in)
		twice := s.Sanitize(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n once=%q\ntwice=%q", in, once, twice)
		}
	}
}

func TestTagSpec_Allows(t *testing.T) {
	spec := DefaultTagSpec()
	for _, tag := range []string{"a", "P", "h6", "code", "time", "hr"} {
		if !spec.Allows(tag) {
			t.Errorf("expected %s allowed", tag)
		}
	}
	for _, tag := range []string{"img", "script", "style", "iframe", "b", "table", "figure"} {
		if spec.Allows(tag) {
			t.Errorf("expected %s disallowed", tag)
		}
	}
}

func TestDefaultTagSpec_ReturnsCopies(t *testing.T) {
	a := DefaultTagSpec()
	a.Elements[0] = "script"
	a.PerElement["a"] = append(a.PerElement["a"], "target")
	b := DefaultTagSpec()
	if b.Elements[0] != "a" || len(b.PerElement["a"]) != 3 {
		t.Fatalf("DefaultTagSpec shares state across calls: %+v", b)
	}
}
