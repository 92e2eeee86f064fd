package app

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/eggcracker/internal/domains"
	"github.com/hyperifyio/eggcracker/internal/fetch"
	"github.com/hyperifyio/eggcracker/internal/pipeline"
	"github.com/hyperifyio/eggcracker/internal/sanitize"
	"github.com/hyperifyio/eggcracker/internal/server"
)

// App wires the fetch client, the content pipeline and the HTTP server from
// one Config.
type App struct {
	cfg    Config
	server *server.Server
}

// New validates cfg and builds the application.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	client := &fetch.Client{
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.Timeout,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		RedirectMaxHops:   cfg.MaxRedirects,
		MaxConcurrent:     cfg.MaxConcurrent,
		AllowPrivateHosts: cfg.AllowPrivateHosts,
	}
	srv := server.New(server.Options{
		Allowlist: domains.New(cfg.Allowlist),
		Fetcher:   client,
		Pipeline:  pipeline.New(sanitize.Default(), cfg.MaxChars),
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})
	return &App{cfg: cfg, server: srv}, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() Config { return a.cfg }

// Handler exposes the HTTP routes, mainly for tests.
func (a *App) Handler() http.Handler { return a.server.Handler() }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		allow := "*"
		if len(a.cfg.Allowlist) > 0 {
			allow = strings.Join(a.cfg.Allowlist, ",")
		}
		log.Info().
			Str("addr", a.cfg.Addr).
			Str("allowlist", allow).
			Int("max_chars", a.cfg.MaxChars).
			Dur("timeout", a.cfg.Timeout).
			Msg("reader listening")
		return a.server.Start(a.cfg.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownGrace)
		defer cancel()
		log.Info().Msg("shutting down")
		return a.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
