package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/net/html/charset"
)

// DefaultUserAgent identifies the reader to upstream sites.
const DefaultUserAgent = "EggcrackerTextOnly/1.0"

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 5 << 20
	defaultMaxRedirects = 10
)

var (
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrContentType       = errors.New("unsupported content type")
	ErrTooLarge          = errors.New("response body too large")
	ErrPrivateHost       = errors.New("private host not allowed")
	ErrTooManyRedirects  = errors.New("too many redirects")
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Result is a fetched document decoded to UTF-8.
type Result struct {
	Body        string
	ContentType string
	// FinalURL is the URL after redirects.
	FinalURL   string
	StatusCode int
}

// Client performs a single bounded GET per call. There are no retries.
type Client struct {
	// HTTPClient, if set, supplies the transport and jar. Its redirect policy
	// and timeout are replaced by the Client's own.
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds the whole request including redirects and body read.
	Timeout time.Duration
	// MaxBodyBytes caps the raw response size. Zero means 5 MiB.
	MaxBodyBytes int64
	// RedirectMaxHops caps redirect following. Zero means 10.
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int
	// AllowPrivateHosts disables the loopback/private address guard.
	AllowPrivateHosts bool

	clientOnce sync.Once
	client     *http.Client

	limiter     chan struct{}
	limiterOnce sync.Once
}

func (c *Client) httpClient() *http.Client {
	c.clientOnce.Do(func() {
		var base http.Client
		if c.HTTPClient != nil {
			base = *c.HTTPClient
		} else {
			base.Transport = c.newTransport()
		}
		base.CheckRedirect = c.checkRedirectFunc()
		base.Timeout = 0 // the request context carries the deadline
		c.client = &base
	})
	return c.client
}

func (c *Client) newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !c.AllowPrivateHosts {
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if isLocalOrPrivateHost(host) {
				return fmt.Errorf("%w: %s", ErrPrivateHost, host)
			}
			return nil
		}
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Get fetches rawURL. Network failures, timeouts, non-2xx statuses,
// non-HTML content, oversize bodies and private destinations are errors.
func (c *Client) Get(ctx context.Context, rawURL string) (*Result, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Waiting for a slot counts against the timeout.
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(req.URL) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, req.URL.Scheme)
	}
	if !c.AllowPrivateHosts && isLocalOrPrivateHost(req.URL.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrPrivateHost, req.URL.Hostname())
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isAllowedHTMLContentType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrContentType, contentType)
	}

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, limit)
	}

	return &Result{
		Body:        decode(raw, contentType),
		ContentType: contentType,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
	}, nil
}

// decode converts raw to UTF-8 using the declared or sniffed charset.
func decode(raw []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return string(raw)
	}
	return string(b)
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	maxHops := c.RedirectMaxHops
	if maxHops <= 0 {
		maxHops = defaultMaxRedirects
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxHops {
			return ErrTooManyRedirects
		}
		// Only allow http/https during redirects
		if !isHTTPScheme(req.URL) {
			return fmt.Errorf("redirect: %w", ErrUnsupportedScheme)
		}
		if !c.AllowPrivateHosts && isLocalOrPrivateHost(req.URL.Hostname()) {
			return fmt.Errorf("redirect: %w", ErrPrivateHost)
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isAllowedHTMLContentType accepts HTML variants and a missing header.
func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func isLocalOrPrivateHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	h = strings.TrimSuffix(strings.TrimPrefix(h, "["), "]")
	if h == "localhost" || strings.HasSuffix(h, ".localhost") || h == "localhost.localdomain" {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return true
		}
	}
	return false
}

func (c *Client) acquire(ctx context.Context) error {
	if c.MaxConcurrent <= 0 {
		return nil
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	select {
	case c.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
