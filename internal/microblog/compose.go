package microblog

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// TwitterMaxLength is the weighted length limit of a tweet.
	TwitterMaxLength = 280
	// MastodonMaxLength is the default status length limit of a Mastodon instance.
	MastodonMaxLength = 500
	// URLLength is the length both platforms charge for any link.
	URLLength = 23

	ellipsis = "..."
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Weigh returns the length a platform charges for text.
type Weigh func(text string) int

// Compose builds "@screenName status url", truncating status with "..." so the
// result fits in limit as measured by weigh. screenName and url may be empty.
// An empty status composes to an empty string.
func Compose(status, screenName, url string, limit int, weigh Weigh) string {
	if status == "" {
		return ""
	}

	build := func(body string) string {
		var b strings.Builder
		if screenName != "" {
			b.WriteString("@" + screenName + " ")
		}
		b.WriteString(body)
		if url != "" {
			b.WriteString(" " + url)
		}
		return b.String()
	}

	text := build(status)
	if weigh(text) <= limit {
		return text
	}

	runes := []rune(status)
	for n := len(runes) - 1; n > 0; n-- {
		text = build(string(runes[:n]) + ellipsis)
		if weigh(text) <= limit {
			return text
		}
	}
	return build(ellipsis)
}

// MastodonWeight counts characters, with every link charged URLLength.
func MastodonWeight(text string) int {
	return weighLinks(text, utf8.RuneCountInString)
}

// TwitterWeight applies the twitter-text v3 weighting: code points in the
// Latin and general punctuation ranges count 1, everything else 2, links 23.
func TwitterWeight(text string) int {
	return weighLinks(text, func(s string) int {
		n := 0
		for _, r := range s {
			n += twitterRuneWeight(r)
		}
		return n
	})
}

func twitterRuneWeight(r rune) int {
	switch {
	case r <= 0x10FF,
		r >= 0x2000 && r <= 0x200D,
		r >= 0x2010 && r <= 0x201F,
		r >= 0x2032 && r <= 0x2037:
		return 1
	default:
		return 2
	}
}

func weighLinks(text string, count func(string) int) int {
	total := 0
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		total += count(text[last:loc[0]]) + URLLength
		last = loc[1]
	}
	return total + count(text[last:])
}
