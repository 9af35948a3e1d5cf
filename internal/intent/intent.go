// Package intent classifies incoming messages by simple pattern rules.
package intent

import (
	"regexp"

	"nagato/internal/models"
)

var (
	// "お勧めの本", "面白い書籍", ...
	bookPattern = regexp.MustCompile(`((お|御|オ)(勧|薦|すす|奨|スス)(め|メ)の|(面白|オモシロ|おもしろ)(い|イ))(図書|本|書籍|書物)`)

	// "おはよう", "おやすみ", "こんにちは", "こんばんわ", ...
	greetingPattern = regexp.MustCompile(`(お(はよ|やすみ)|(こん(にち|ばん)[は|わ]))`)

	timelineSpeedPattern = regexp.MustCompile(`流速`)
)

// Classify returns the intent of text. Book requests win over greetings,
// greetings over timeline speed; anything else gets a random phrase.
func Classify(text string) models.Intent {
	switch {
	case bookPattern.MatchString(text):
		return models.IntentBook
	case greetingPattern.MatchString(text):
		return models.IntentGreeting
	case timelineSpeedPattern.MatchString(text):
		return models.IntentTimelineSpeed
	default:
		return models.IntentRandom
	}
}
