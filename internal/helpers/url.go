package helpers

import (
	"errors"
	"net/url"
	"strings"
)

// Hostname extracts the lower-cased host of an absolute URL with any leading
// "www." removed. Schemeless or otherwise host-less input is an error, so the
// caller decides what an unknown domain means.
func Hostname(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" {
		return "", errors.New("url missing scheme")
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", errors.New("url missing host")
	}
	return strings.TrimPrefix(host, "www."), nil
}

// FillDomain keeps a collector-supplied domain, otherwise derives it from the
// URL. Unparsable URLs yield "".
func FillDomain(rawURL, domain string) string {
	if domain != "" {
		return domain
	}
	host, err := Hostname(rawURL)
	if err != nil {
		return ""
	}
	return host
}
