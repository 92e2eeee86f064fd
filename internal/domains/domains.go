package domains

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrInvalidScheme is returned when a URL does not start with http:// or https://.
	ErrInvalidScheme = errors.New("url must start with http:// or https://")
	// ErrNotAllowed is returned when a URL's host is outside the allowlist.
	ErrNotAllowed = errors.New("domain not allowed")
)

// Allowlist is an immutable set of permitted source domains. A host matches
// when it equals a listed domain or is a subdomain of one. Hosts and entries
// are compared lowercased with a single leading "www." removed. The zero
// value and an empty list allow every host.
type Allowlist struct {
	domains []string
}

// New builds an Allowlist from raw entries. Blank entries are ignored, and
// entries may be given as bare hosts or as full URLs.
func New(entries []string) Allowlist {
	out := make([]string, 0, len(entries))
	seen := map[string]struct{}{}
	for _, e := range entries {
		d := normalizeEntry(e)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return Allowlist{domains: out}
}

// Parse splits a comma-separated ALLOWLIST value.
func Parse(csv string) Allowlist {
	return New(strings.Split(csv, ","))
}

// Domains returns a copy of the normalized entries.
func (a Allowlist) Domains() []string {
	return append([]string(nil), a.domains...)
}

// Unrestricted reports whether every host is allowed.
func (a Allowlist) Unrestricted() bool {
	return len(a.domains) == 0
}

// Allowed reports whether rawURL's hostname passes the allowlist. Unparseable
// URLs are rejected unless the list is unrestricted.
func (a Allowlist) Allowed(rawURL string) bool {
	if a.Unrestricted() {
		return true
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return a.AllowedHost(u.Hostname())
}

// AllowedHost is Allowed for an already extracted hostname.
func (a Allowlist) AllowedHost(host string) bool {
	if a.Unrestricted() {
		return true
	}
	h := DisplayHost(host)
	if h == "" {
		return false
	}
	for _, d := range a.domains {
		if h == d || strings.HasSuffix(h, "."+d) {
			return true
		}
	}
	return false
}

// Check validates scheme first and then the allowlist, returning the
// matching sentinel error. It performs no network access.
func (a Allowlist) Check(rawURL string) error {
	if !HasHTTPScheme(rawURL) {
		return ErrInvalidScheme
	}
	if !a.Allowed(rawURL) {
		return ErrNotAllowed
	}
	return nil
}

// HasHTTPScheme reports whether s begins with http:// or https://. The check
// is a literal prefix match, as the reader only accepts absolute URLs.
func HasHTTPScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// DisplayHost lowercases host and removes one leading "www.".
func DisplayHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	h = strings.TrimSuffix(h, ".")
	return strings.TrimPrefix(h, "www.")
}

func normalizeEntry(e string) string {
	e = strings.TrimSpace(e)
	if e == "" {
		return ""
	}
	if strings.Contains(e, "://") {
		if u, err := url.Parse(e); err == nil {
			e = u.Hostname()
		}
	}
	return DisplayHost(e)
}
