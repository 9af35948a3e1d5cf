package validation

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

// htmlTagPattern matches an HTML element, assuming '>' inside attributes or
// contents is always escaped (true for Mastodon status content).
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// breakTagPattern matches elements that separate words visually.
var breakTagPattern = regexp.MustCompile(`(?i)<br\s*/?>|</p>`)

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// IsURL returns true if the word parses as a URL with a scheme.
func IsURL(word string) bool {
	u, err := url.Parse(word)
	if err != nil {
		return false
	}
	return u.Scheme != ""
}

// StripHTML removes HTML elements and unescapes entities.
func StripHTML(text string) string {
	text = breakTagPattern.ReplaceAllString(text, " ")
	return html.UnescapeString(htmlTagPattern.ReplaceAllString(text, ""))
}

// ExtractWords joins the texts, strips HTML, and drops @mentions and URLs.
// The remaining words are joined with single spaces.
func ExtractWords(texts []string) string {
	joined := StripHTML(strings.Join(texts, " "))

	var words []string
	for _, word := range strings.Fields(joined) {
		if strings.HasPrefix(word, "@") || IsURL(word) {
			continue
		}
		words = append(words, word)
	}
	return strings.Join(words, " ")
}
