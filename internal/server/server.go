// Package server exposes the reader over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/eggcracker/internal/domains"
	"github.com/hyperifyio/eggcracker/internal/fetch"
	"github.com/hyperifyio/eggcracker/internal/metrics"
	"github.com/hyperifyio/eggcracker/internal/pipeline"
	"github.com/hyperifyio/eggcracker/internal/render"
)

// Client-visible error details.
const (
	DetailInvalidScheme = "URL must start with http:// or https://"
	DetailNotAllowed    = "Domain not allowed"
	DetailFetchFailed   = "Failed to fetch source URL"
	DetailRateLimited   = "Rate limit exceeded"
)

// Fetcher retrieves an upstream document.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetch.Result, error)
}

// Options configures a Server. Fetcher is required; the rest default.
type Options struct {
	Allowlist domains.Allowlist
	Fetcher   Fetcher
	Pipeline  *pipeline.Pipeline
	Renderer  *render.Renderer
	// RateLimit is the per-client request rate on /read in requests per
	// second. Zero disables limiting.
	RateLimit float64
	RateBurst int
	// Now supplies the fetch timestamp.
	Now func() time.Time
}

// Server is the HTTP surface of the reader.
type Server struct {
	e         *echo.Echo
	allowlist domains.Allowlist
	fetcher   Fetcher
	pipeline  *pipeline.Pipeline
	now       func() time.Time
}

// New builds the echo application with routes and middleware registered.
func New(opts Options) *Server {
	if opts.Pipeline == nil {
		opts.Pipeline = pipeline.New(nil, 0)
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{
		allowlist: opts.Allowlist,
		fetcher:   opts.Fetcher,
		pipeline:  opts.Pipeline,
		now:       opts.Now,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = opts.Renderer
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/healthz" || path == "/metrics"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request completed")
			return nil
		},
	}))
	e.Use(middleware.Recover())

	var readMiddleware []echo.MiddlewareFunc
	if opts.RateLimit > 0 {
		readMiddleware = append(readMiddleware, rateLimiter(opts.RateLimit, opts.RateBurst))
	}
	e.GET("/read", s.handleRead, readMiddleware...)
	e.GET("/healthz", handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.e = e
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.e }

// Start listens on addr and blocks until the server stops. A clean shutdown
// returns nil.
func (s *Server) Start(addr string) error {
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleRead(c echo.Context) error {
	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()

	target := c.QueryParam("url")
	if err := s.allowlist.Check(target); err != nil {
		if errors.Is(err, domains.ErrInvalidScheme) {
			metrics.RecordRead(metrics.OutcomeInvalidURL)
			return echo.NewHTTPError(http.StatusBadRequest, DetailInvalidScheme).SetInternal(err)
		}
		metrics.RecordRead(metrics.OutcomeForbidden)
		return echo.NewHTTPError(http.StatusForbidden, DetailNotAllowed).SetInternal(err)
	}

	start := time.Now()
	res, err := s.fetcher.Get(c.Request().Context(), target)
	if err != nil {
		metrics.RecordFetch("error", time.Since(start).Seconds())
		metrics.RecordFetchError(fetchErrorKind(err))
		metrics.RecordRead(metrics.OutcomeUpstreamError)
		return echo.NewHTTPError(http.StatusBadGateway, DetailFetchFailed).SetInternal(err)
	}
	metrics.RecordFetch("ok", time.Since(start).Seconds())

	pageURL, err := url.Parse(res.FinalURL)
	if err != nil || res.FinalURL == "" {
		pageURL, _ = url.Parse(target)
	}
	start = time.Now()
	out := s.pipeline.Run(res.Body, pageURL)
	metrics.RecordPipeline(string(out.Method), time.Since(start).Seconds(), out.Excerpt.Len(), out.Excerpt.Truncated)

	page := render.NewPage(out.Title, target, out.Excerpt.Text, s.now())
	c.Response().Header().Set("Content-Security-Policy", render.ContentSecurityPolicy)
	if err := c.Render(http.StatusOK, render.PageTemplate, page); err != nil {
		metrics.RecordRead(metrics.OutcomeRenderError)
		return err
	}
	metrics.RecordRead(metrics.OutcomeOK)
	return nil
}

func fetchErrorKind(err error) string {
	var se *fetch.StatusError
	switch {
	case errors.As(err, &se):
		return "status"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, fetch.ErrContentType):
		return "content_type"
	case errors.Is(err, fetch.ErrTooLarge):
		return "too_large"
	case errors.Is(err, fetch.ErrPrivateHost):
		return "private_host"
	case errors.Is(err, fetch.ErrTooManyRedirects):
		return "redirects"
	case errors.Is(err, fetch.ErrUnsupportedScheme):
		return "scheme"
	default:
		return "network"
	}
}

// rateLimiter limits /read per client IP.
func rateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	if burst <= 0 {
		burst = max(int(perSecond), 1)
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			c.Response().Header().Set("Retry-After", "1")
			return echo.NewHTTPError(http.StatusTooManyRequests, DetailRateLimited)
		},
	})
}

// errorHandler renders every error as {"detail": msg}. Internal causes are
// logged but never sent to the client.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	detail := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			detail = m
		} else {
			detail = http.StatusText(status)
		}
	}

	ev := log.Warn()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		ev = log.Error()
	}
	ev.Err(err).
		Int("status", status).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("uri", c.Request().RequestURI).
		Msg("request error")

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, map[string]string{"detail": detail})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to send error response")
	}
}
