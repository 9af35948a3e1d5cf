package models

import (
	"slices"
	"strings"
	"time"
)

// Visibility constants (Mastodon semantics; Twitter statuses are always public).
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
	VisibilityDirect   = "direct"
)

// Status represents a post (toot or tweet) on a microblog.
type Status struct {
	ID                string    `json:"id"`
	Text              string    `json:"text"` // may contain HTML on Mastodon
	User              User      `json:"user"`
	CreatedAt         time.Time `json:"created_at"`
	InReplyToStatusID string    `json:"in_reply_to_status_id,omitempty"`
	InReplyToUserID   string    `json:"in_reply_to_user_id,omitempty"`
	Visibility        string    `json:"visibility,omitempty"`
}

// IsReply returns true if the status replies to another status.
func (s *Status) IsReply() bool {
	return s.InReplyToStatusID != ""
}

// CompareIDs compares two decimal status IDs numerically without parsing them,
// so snowflake IDs beyond int64 still order correctly.
// The empty ID sorts before every other ID.
func CompareIDs(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// SortIDs sorts IDs in ascending numeric order.
func SortIDs(ids []string) {
	slices.SortFunc(ids, CompareIDs)
}

// SortStatuses sorts statuses oldest first by ID.
func SortStatuses(statuses []Status) {
	slices.SortFunc(statuses, func(a, b Status) int {
		return CompareIDs(a.ID, b.ID)
	})
}
