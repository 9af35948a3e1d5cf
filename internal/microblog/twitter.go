package microblog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nagato/internal/models"
)

// DefaultTwitterBaseURL is the Twitter API host.
const DefaultTwitterBaseURL = "https://api.twitter.com"

const (
	twitterTweetPage = 100
	twitterUserPage  = 1000
	tweetFields      = "created_at,author_id,in_reply_to_user_id,referenced_tweets"
)

type twitterUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type twitterTweet struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	AuthorID         string    `json:"author_id"`
	CreatedAt        time.Time `json:"created_at"`
	InReplyToUserID  string    `json:"in_reply_to_user_id"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
}

type twitterMeta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token"`
}

type twitterTweets struct {
	Data     []twitterTweet `json:"data"`
	Includes struct {
		Users []twitterUser `json:"users"`
	} `json:"includes"`
	Meta twitterMeta `json:"meta"`
}

type twitterUsers struct {
	Data []twitterUser `json:"data"`
	Meta twitterMeta   `json:"meta"`
}

func (r twitterTweets) statuses() []models.Status {
	names := make(map[string]string, len(r.Includes.Users))
	for _, u := range r.Includes.Users {
		names[u.ID] = u.Username
	}

	out := make([]models.Status, 0, len(r.Data))
	for _, t := range r.Data {
		st := models.Status{
			ID:              t.ID,
			Text:            t.Text,
			User:            models.User{ID: t.AuthorID, ScreenName: names[t.AuthorID]},
			CreatedAt:       t.CreatedAt,
			InReplyToUserID: t.InReplyToUserID,
			Visibility:      models.VisibilityPublic,
		}
		for _, ref := range t.ReferencedTweets {
			if ref.Type == "replied_to" {
				st.InReplyToStatusID = ref.ID
			}
		}
		out = append(out, st)
	}
	return out
}

// Twitter talks to the Twitter API v2 with an OAuth 2.0 user-context token.
type Twitter struct {
	t  *transport
	me *models.User
}

// NewTwitter creates a client for the API at baseURL (DefaultTwitterBaseURL in production).
// httpClient must add the Authorization header; see NewHTTPClient.
func NewTwitter(baseURL string, httpClient *http.Client, logger *slog.Logger) *Twitter {
	return &Twitter{t: newTransport("twitter", baseURL, httpClient, logger)}
}

// VerifyCredentials implements API.
func (tw *Twitter) VerifyCredentials(ctx context.Context) (models.User, error) {
	var resp struct {
		Data twitterUser `json:"data"`
	}
	if _, err := tw.t.getJSON(ctx, "/2/users/me", nil, &resp); err != nil {
		return models.User{}, fmt.Errorf("failed to verify credentials: %w", err)
	}
	u := models.User{ID: resp.Data.ID, ScreenName: resp.Data.Username}
	tw.me = &u
	return u, nil
}

func (tw *Twitter) self(ctx context.Context) (models.User, error) {
	if tw.me != nil {
		return *tw.me, nil
	}
	return tw.VerifyCredentials(ctx)
}

func tweetQuery() url.Values {
	return url.Values{
		"max_results":  {strconv.Itoa(twitterTweetPage)},
		"tweet.fields": {tweetFields},
		"expansions":   {"author_id"},
		"user.fields":  {"username"},
	}
}

func (tw *Twitter) tweets(ctx context.Context, path string, query url.Values) ([]models.Status, error) {
	var resp twitterTweets
	if _, err := tw.t.getJSON(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return resp.statuses(), nil
}

// HomeTimeline implements API.
func (tw *Twitter) HomeTimeline(ctx context.Context) ([]models.Status, error) {
	me, err := tw.self(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := tw.tweets(ctx, "/2/users/"+url.PathEscape(me.ID)+"/timelines/reverse_chronological", tweetQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to get home timeline: %w", err)
	}
	return statuses, nil
}

// UserTimeline implements API.
func (tw *Twitter) UserTimeline(ctx context.Context, userID string) ([]models.Status, error) {
	statuses, err := tw.tweets(ctx, "/2/users/"+url.PathEscape(userID)+"/tweets", tweetQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline of %s: %w", userID, err)
	}
	return statuses, nil
}

// Mentions implements API.
func (tw *Twitter) Mentions(ctx context.Context, sinceID string) ([]models.Status, error) {
	me, err := tw.self(ctx)
	if err != nil {
		return nil, err
	}
	q := tweetQuery()
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}
	statuses, err := tw.tweets(ctx, "/2/users/"+url.PathEscape(me.ID)+"/mentions", q)
	if err != nil {
		return nil, fmt.Errorf("failed to get mentions: %w", err)
	}
	return statuses, nil
}

func (tw *Twitter) userIDs(ctx context.Context, relation string) (models.IDSet, error) {
	me, err := tw.self(ctx)
	if err != nil {
		return nil, err
	}

	ids := models.NewIDSet()
	path := "/2/users/" + url.PathEscape(me.ID) + "/" + relation
	token := ""
	for {
		q := url.Values{"max_results": {strconv.Itoa(twitterUserPage)}}
		if token != "" {
			q.Set("pagination_token", token)
		}
		var page twitterUsers
		if _, err := tw.t.getJSON(ctx, path, q, &page); err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", relation, err)
		}
		for _, u := range page.Data {
			ids.Add(u.ID)
		}
		token = page.Meta.NextToken
		if token == "" || len(page.Data) == 0 {
			return ids, nil
		}
	}
}

// FollowerIDs implements API.
func (tw *Twitter) FollowerIDs(ctx context.Context) (models.IDSet, error) {
	return tw.userIDs(ctx, "followers")
}

// FriendIDs implements API.
func (tw *Twitter) FriendIDs(ctx context.Context) (models.IDSet, error) {
	return tw.userIDs(ctx, "following")
}

// PendingFriendIDs implements API. API v2 has no endpoint listing outgoing
// follow requests; a repeated request to a protected account is a no-op.
func (tw *Twitter) PendingFriendIDs(ctx context.Context) (models.IDSet, error) {
	return models.NewIDSet(), nil
}

// Follow implements API.
func (tw *Twitter) Follow(ctx context.Context, userID string) error {
	me, err := tw.self(ctx)
	if err != nil {
		return err
	}
	body := map[string]string{"target_user_id": userID}
	if err := tw.t.send(ctx, http.MethodPost, "/2/users/"+url.PathEscape(me.ID)+"/following", body, nil, nil); err != nil {
		return fmt.Errorf("failed to follow %s: %w", userID, err)
	}
	return nil
}

// Unfollow implements API.
func (tw *Twitter) Unfollow(ctx context.Context, userID string) error {
	me, err := tw.self(ctx)
	if err != nil {
		return err
	}
	path := "/2/users/" + url.PathEscape(me.ID) + "/following/" + url.PathEscape(userID)
	if err := tw.t.send(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to unfollow %s: %w", userID, err)
	}
	return nil
}

type tweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type tweetPost struct {
	Text  string      `json:"text"`
	Reply *tweetReply `json:"reply,omitempty"`
}

// Post implements API.
func (tw *Twitter) Post(ctx context.Context, text, link string, inReplyTo *models.Status) error {
	var post tweetPost
	screenName := ""
	if inReplyTo != nil {
		post.Reply = &tweetReply{InReplyToTweetID: inReplyTo.ID}
		screenName = inReplyTo.User.ScreenName
	}
	post.Text = Compose(text, screenName, link, TwitterMaxLength, TwitterWeight)
	if post.Text == "" {
		return ErrEmptyStatus
	}

	if err := tw.t.send(ctx, http.MethodPost, "/2/tweets", post, nil, nil); err != nil {
		return fmt.Errorf("failed to post tweet: %w", err)
	}
	return nil
}

var _ API = (*Twitter)(nil)
