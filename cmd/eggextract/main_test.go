package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sample = `<html><head><title>Notes From The Night Market</title></head><body>
<article><p>The stalls open at dusk, and by nine the lanes are full of smoke, noise, and the smell of grilled corn.</p>
<p><img src="stall.jpg">Vendors arrive early to claim the best corners, some of them after a two hour drive.</p></article>
</body></html>`

func writeSample(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(p, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestRun_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, "", writeSample(t), 2500, time.Second, false, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "title:     Notes From The Night Market") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "The stalls open at dusk") || strings.Contains(out, "<img") {
		t.Fatalf("unexpected excerpt:\n%s", out)
	}
}

func TestRun_JSONWithFragment(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, "", writeSample(t), 30, time.Second, true, true); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got output
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if !got.Truncated || got.Fragment == "" {
		t.Fatalf("unexpected result %+v", got)
	}
	if strings.Contains(got.Fragment, "<img") {
		t.Fatalf("media leaked into fragment: %q", got.Fragment)
	}
}

func TestRun_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, "", filepath.Join(t.TempDir(), "none.html"), 100, time.Second, false, false); err == nil {
		t.Fatalf("expected error")
	}
}
