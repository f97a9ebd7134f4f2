package helpers

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// maxSuffixWords bounds how long a trailing " - Site Name" segment may be
// before it is treated as part of the title.
const maxSuffixWords = 4

// StrictHTMLPolicy returns a singleton bluemonday policy that strips every HTML
// element and attribute.
func StrictHTMLPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// PlainText removes markup from s, decodes entities and collapses whitespace.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = html.UnescapeString(StrictHTMLPolicy().Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// CleanTitle derives a display title from a raw page title: markup is removed
// and a short trailing site name ("... - MDN Web Docs", "... | GitHub") is cut.
func CleanTitle(raw string) string {
	t := PlainText(raw)
	for _, sep := range []string{" | ", " - ", " – ", " — ", " · "} {
		i := strings.LastIndex(t, sep)
		if i <= 0 {
			continue
		}
		head, tail := strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+len(sep):])
		if head == "" || len(strings.Fields(tail)) > maxSuffixWords {
			continue
		}
		return head
	}
	return t
}
