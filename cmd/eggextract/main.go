// Command eggextract runs the reader's content pipeline on a local file,
// stdin or a URL and prints the result. It is a debugging aid.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/eggcracker/internal/app"
	"github.com/hyperifyio/eggcracker/internal/excerpt"
	"github.com/hyperifyio/eggcracker/internal/fetch"
	"github.com/hyperifyio/eggcracker/internal/pipeline"
)

type output struct {
	Title     string `json:"title"`
	Method    string `json:"method"`
	Excerpt   string `json:"excerpt"`
	Truncated bool   `json:"truncated"`
	Fragment  string `json:"fragment,omitempty"`
}

func main() {
	var (
		rawURL   string
		maxChars int
		timeout  time.Duration
		showHTML bool
		asJSON   bool
		verbose  bool
	)
	flag.StringVar(&rawURL, "url", "", "Fetch this URL instead of reading a file")
	flag.IntVar(&maxChars, "max-chars", excerpt.DefaultMaxChars, "Excerpt character budget")
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "Fetch timeout for -url")
	flag.BoolVar(&showHTML, "html", false, "Also print the sanitized HTML fragment")
	flag.BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	app.SetupLogging(os.Stderr, verbose, "console")

	if err := run(os.Stdout, rawURL, flag.Arg(0), maxChars, timeout, showHTML, asJSON); err != nil {
		log.Error().Err(err).Msg("extract failed")
		os.Exit(1)
	}
}

func run(w io.Writer, rawURL, path string, maxChars int, timeout time.Duration, showHTML, asJSON bool) error {
	raw, pageURL, err := load(rawURL, path, timeout)
	if err != nil {
		return err
	}
	res := pipeline.New(nil, maxChars).Run(raw, pageURL)
	out := output{
		Title:     res.Title,
		Method:    string(res.Method),
		Excerpt:   res.Excerpt.Text,
		Truncated: res.Excerpt.Truncated,
	}
	if showHTML {
		out.Fragment = res.Fragment
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	fmt.Fprintf(w, "title:     %s\n", out.Title)
	fmt.Fprintf(w, "method:    %s\n", out.Method)
	fmt.Fprintf(w, "chars:     %d (truncated: %t)\n", res.Excerpt.Len(), out.Truncated)
	fmt.Fprintf(w, "\n%s\n", out.Excerpt)
	if showHTML {
		fmt.Fprintf(w, "\n%s\n", out.Fragment)
	}
	return nil
}

func load(rawURL, path string, timeout time.Duration) (string, *url.URL, error) {
	if rawURL != "" {
		c := &fetch.Client{Timeout: timeout}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := c.Get(ctx, rawURL)
		if err != nil {
			return "", nil, fmt.Errorf("fetch: %w", err)
		}
		u, _ := url.Parse(res.FinalURL)
		return res.Body, u, nil
	}
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("read input: %w", err)
	}
	return string(b), nil, nil
}
