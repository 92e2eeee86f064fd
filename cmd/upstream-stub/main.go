// Command upstream-stub serves fixture articles full of media, scripts and
// boilerplate for manual end-to-end checks of the reader.
package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/eggcracker/internal/app"
)

const articlePage = `<!doctype html>
<html><head><meta charset="utf-8"><title>Tide Tables &amp; Coastal Walks &lt;2024&gt;</title>
<style>.hero{background-image: url("/hero.jpg");}</style>
<script src="/tracker.js"></script></head>
<body>
<nav class="menu"><a href="/">Home</a> <a href="/walks">Walks</a> <a href="/about">About</a></nav>
<div id="cookie-consent">We use cookies. <button>Accept</button></div>
<main><article class="post-content">
<h1>Tide Tables &amp; Coastal Walks</h1>
<p>Planning a coastal walk starts with the tide table, because the safest routes change twice a day.</p>
<figure><img src="/cliffs.jpg" alt="Cliffs" onerror="alert('x')"><figcaption>The cliffs at low tide</figcaption></figure>
<p style="background-image:url('/texture.png')">Low water opens the sandbars, rock pools, and hidden coves that are cut off for the rest of the day.</p>
<video controls poster="/poster.jpg"><source src="/walk.mp4"></video>
<p>Check the local harbour office, the coastguard notices, and the weather before setting out.</p>
<iframe src="https://ads.example.net/slot"></iframe>
<svg width="10" height="10"><circle r="4"/></svg>
<script>document.write('<img src=x onerror=alert(1)>')</script>
</article></main>
<aside class="sidebar related"><a href="/a">Related one</a><a href="/b">Related two</a></aside>
<footer>Copyright Coastal Walks</footer>
</body></html>`

func main() {
	app.SetupLogging(os.Stderr, false, "console")

	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Msg("upstream stub listening")
	if err := http.ListenAndServe(addr, newMux()); err != nil {
		log.Fatal().Err(err).Msg("upstream stub failed")
	}
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage))
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><head><title>Caf\xe9 Culture</title></head><body><article><p>The caf\xe9 on the corner, open since 1952, still serves coffee the old way.</p></article></body></html>"))
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/article", http.StatusFound)
	})
	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})
	mux.HandleFunc("/pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})
	return mux
}
