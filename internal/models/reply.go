package models

import "time"

// Intent is the kind of response a message asks for.
type Intent string

// Intent constants
const (
	IntentBook          Intent = "book"
	IntentGreeting      Intent = "greeting"
	IntentTimelineSpeed Intent = "timeline_speed"
	IntentRandom        Intent = "random"
)

// UnknownBook is the response text when no book could be recommended.
const UnknownBook = "分からない"

// Response is the text (and optional URL) to post back.
type Response struct {
	Text   string `json:"text"`
	URL    string `json:"url,omitempty"`
	Intent Intent `json:"intent"`
}

// ReplyRecord is a reply the bot has sent, persisted by the reply log.
type ReplyRecord struct {
	StatusID  string    `json:"status_id"` // the status replied to
	UserID    string    `json:"user_id"`
	Intent    Intent    `json:"intent"`
	Text      string    `json:"text"`
	URL       string    `json:"url,omitempty"`
	RepliedAt time.Time `json:"replied_at"`
}
