// Package phrases holds the canned phrases the bot says when it has nothing better to say.
package phrases

import (
	_ "embed"
	"math/rand/v2"
	"strings"
)

//go:embed phrases.txt
var defaultPhrases string

// Book is a list of phrases.
type Book struct {
	phrases []string
}

// Default returns the built-in phrases.
func Default() *Book {
	return New(strings.Split(defaultPhrases, "\n"))
}

// New builds a phrase book, dropping blank lines and surrounding whitespace.
// Falls back to the built-in phrases when nothing remains.
func New(lines []string) *Book {
	var phrases []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			phrases = append(phrases, line)
		}
	}
	if len(phrases) == 0 && lines != nil {
		return Default()
	}
	return &Book{phrases: phrases}
}

// Len returns the number of phrases.
func (b *Book) Len() int {
	return len(b.phrases)
}

// Random returns a uniformly chosen phrase.
func (b *Book) Random(rnd *rand.Rand) string {
	if len(b.phrases) == 0 {
		return ""
	}
	return b.phrases[rnd.IntN(len(b.phrases))]
}
