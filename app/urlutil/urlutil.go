// Package urlutil contains the URL helpers used throughout feed discovery:
// validity checks, normalization and base URL rewriting.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// Replacement rewrites one base URL prefix to another. Replacements are
// applied in slice order, so earlier entries win when prefixes overlap.
type Replacement struct {
	Old string `yaml:"old"`
	New string `yaml:"new"`
}

// ReplacementMap is an ordered list of base URL replacements.
type ReplacementMap []Replacement

var multiSlashRe = regexp.MustCompile(`(^|[^:])/{2,}`)

// IsValidUrl reports whether s is a structurally valid absolute URL with a
// scheme and a host. It says nothing about whether the URL is reachable.
func IsValidUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// NormalizeUrl collapses runs of slashes that are not part of a scheme
// separator into a single slash and trims leading and trailing slashes.
// NormalizeUrl is idempotent.
func NormalizeUrl(s string) string {
	collapsed := multiSlashRe.ReplaceAllString(s, "${1}/")
	return strings.Trim(collapsed, "/")
}

// TransformUrl returns maybeRelative unchanged when it already is a valid
// absolute URL. Otherwise it resolves it against the scheme and host of
// baseUrl, never against the page path: "/feed" under
// "https://example.com/blog" becomes "https://example.com/feed".
func TransformUrl(baseUrl, maybeRelative string) string {
	if IsValidUrl(maybeRelative) {
		return maybeRelative
	}

	base, err := url.Parse(baseUrl)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return maybeRelative
	}

	return base.Scheme + "://" + base.Host + "/" + strings.TrimLeft(maybeRelative, "/")
}

// ReplaceBaseUrl replaces oldBase with newBase when oldBase is a prefix of
// rawUrl and returns rawUrl unchanged otherwise.
func ReplaceBaseUrl(rawUrl, oldBase, newBase string) string {
	if !strings.HasPrefix(rawUrl, oldBase) {
		return rawUrl
	}

	return newBase + strings.TrimPrefix(rawUrl, oldBase)
}

// ReplaceBaseUrls applies every replacement in order, threading the result
// through each step.
func ReplaceBaseUrls(rawUrl string, replacements ReplacementMap) string {
	for _, r := range replacements {
		rawUrl = ReplaceBaseUrl(rawUrl, r.Old, r.New)
	}

	return rawUrl
}
