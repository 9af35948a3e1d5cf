// Package microblog abstracts the microblog platforms the bot can run on.
package microblog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"nagato/internal/models"
)

// ErrEmptyStatus is returned when asked to post nothing.
var ErrEmptyStatus = errors.New("empty status")

// API is the set of microblog operations the bot uses.
// Mastodon and Twitter implement it; tests use an in-memory fake.
type API interface {
	// VerifyCredentials returns the authenticated account.
	VerifyCredentials(ctx context.Context) (models.User, error)
	// HomeTimeline returns recent statuses of the home timeline, newest first.
	HomeTimeline(ctx context.Context) ([]models.Status, error)
	// UserTimeline returns recent statuses posted by userID, newest first.
	UserTimeline(ctx context.Context, userID string) ([]models.Status, error)
	// Mentions returns statuses mentioning the account with IDs greater than sinceID.
	// An empty sinceID returns the most recent mentions.
	Mentions(ctx context.Context, sinceID string) ([]models.Status, error)
	// FollowerIDs returns the accounts following the bot.
	FollowerIDs(ctx context.Context) (models.IDSet, error)
	// FriendIDs returns the accounts the bot follows.
	FriendIDs(ctx context.Context) (models.IDSet, error)
	// PendingFriendIDs returns protected accounts with an outstanding follow request.
	PendingFriendIDs(ctx context.Context) (models.IDSet, error)
	Follow(ctx context.Context, userID string) error
	Unfollow(ctx context.Context, userID string) error
	// Post publishes text with an optional URL, as a reply when inReplyTo is non-nil.
	Post(ctx context.Context, text, url string, inReplyTo *models.Status) error
}

// APIError is an error response from a microblog API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Temporary returns true for errors worth counting against the circuit breaker.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// NewHTTPClient returns an HTTP client that authenticates with a bearer token.
// The base transport is taken from ctx (oauth2.HTTPClient) when present.
func NewHTTPClient(ctx context.Context, accessToken string, timeout time.Duration) *http.Client {
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	hc.Timeout = timeout
	return hc
}
