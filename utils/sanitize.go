package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

// StripHTML removes every tag from user supplied free text. The result is
// plain text, so entities escaped by the policy are decoded again.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// SanitizeHTML keeps safe formatting markup in staff-authored descriptions
// and drops scripts, event handlers and javascript: links.
func SanitizeHTML(s string) string {
	if s == "" {
		return ""
	}
	return ugcPolicy.Sanitize(s)
}
