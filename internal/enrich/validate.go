package enrich

import (
	"net/url"
	"strings"
)

// ValidateWebsite checks that raw is an absolute http(s) URL with a host.
// It performs no I/O.
func ValidateWebsite(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, newError(KindValidation, "Website URL is required", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, newError(KindValidation, "Invalid URL format", err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, newError(KindValidation, "Invalid URL format", nil)
	}
	return u, nil
}

// NormalizeSource reduces a website URL to its origin, e.g. "https://acme.com".
func NormalizeSource(u *url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}
