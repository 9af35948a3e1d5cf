package microblog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"nagato/internal/models"
)

const (
	mastodonStatusPage  = 40
	mastodonAccountPage = 80
)

type mastodonAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
}

type mastodonStatus struct {
	ID                 string          `json:"id"`
	Content            string          `json:"content"`
	Account            mastodonAccount `json:"account"`
	CreatedAt          time.Time       `json:"created_at"`
	InReplyToID        *string         `json:"in_reply_to_id"`
	InReplyToAccountID *string         `json:"in_reply_to_account_id"`
	Visibility         string          `json:"visibility"`
}

type mastodonNotification struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Status *mastodonStatus `json:"status"`
}

func (a mastodonAccount) user() models.User {
	name := a.Acct
	if name == "" {
		name = a.Username
	}
	return models.User{ID: a.ID, ScreenName: name}
}

func (s mastodonStatus) status() models.Status {
	st := models.Status{
		ID:         s.ID,
		Text:       s.Content,
		User:       s.Account.user(),
		CreatedAt:  s.CreatedAt,
		Visibility: s.Visibility,
	}
	if s.InReplyToID != nil {
		st.InReplyToStatusID = *s.InReplyToID
	}
	if s.InReplyToAccountID != nil {
		st.InReplyToUserID = *s.InReplyToAccountID
	}
	return st
}

// Mastodon talks to the Mastodon REST API (/api/v1).
// Status text is returned as the HTML the server renders.
type Mastodon struct {
	t  *transport
	me *models.User
}

// NewMastodon creates a client for the instance at baseURL.
// httpClient must add the Authorization header; see NewHTTPClient.
func NewMastodon(baseURL string, httpClient *http.Client, logger *slog.Logger) *Mastodon {
	return &Mastodon{t: newTransport("mastodon", baseURL, httpClient, logger)}
}

// VerifyCredentials implements API.
func (m *Mastodon) VerifyCredentials(ctx context.Context) (models.User, error) {
	var acct mastodonAccount
	if _, err := m.t.getJSON(ctx, "/api/v1/accounts/verify_credentials", nil, &acct); err != nil {
		return models.User{}, fmt.Errorf("failed to verify credentials: %w", err)
	}
	u := acct.user()
	m.me = &u
	return u, nil
}

func (m *Mastodon) self(ctx context.Context) (models.User, error) {
	if m.me != nil {
		return *m.me, nil
	}
	return m.VerifyCredentials(ctx)
}

func (m *Mastodon) statuses(ctx context.Context, path string, query url.Values) ([]models.Status, error) {
	var raw []mastodonStatus
	if _, err := m.t.getJSON(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Status, 0, len(raw))
	for _, s := range raw {
		out = append(out, s.status())
	}
	return out, nil
}

// HomeTimeline implements API.
func (m *Mastodon) HomeTimeline(ctx context.Context) ([]models.Status, error) {
	q := url.Values{"limit": {strconv.Itoa(mastodonStatusPage)}}
	statuses, err := m.statuses(ctx, "/api/v1/timelines/home", q)
	if err != nil {
		return nil, fmt.Errorf("failed to get home timeline: %w", err)
	}
	return statuses, nil
}

// UserTimeline implements API.
func (m *Mastodon) UserTimeline(ctx context.Context, userID string) ([]models.Status, error) {
	q := url.Values{"limit": {strconv.Itoa(mastodonStatusPage)}}
	statuses, err := m.statuses(ctx, "/api/v1/accounts/"+url.PathEscape(userID)+"/statuses", q)
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline of %s: %w", userID, err)
	}
	return statuses, nil
}

// Mentions implements API using the notifications endpoint.
func (m *Mastodon) Mentions(ctx context.Context, sinceID string) ([]models.Status, error) {
	q := url.Values{
		"types[]": {"mention"},
		"limit":   {strconv.Itoa(mastodonStatusPage)},
	}
	var notifications []mastodonNotification
	if _, err := m.t.getJSON(ctx, "/api/v1/notifications", q, &notifications); err != nil {
		return nil, fmt.Errorf("failed to get mentions: %w", err)
	}

	var out []models.Status
	for _, n := range notifications {
		if n.Type != "mention" || n.Status == nil {
			continue
		}
		if sinceID != "" && models.CompareIDs(n.Status.ID, sinceID) <= 0 {
			continue
		}
		out = append(out, n.Status.status())
	}
	return out, nil
}

func (m *Mastodon) accountIDs(ctx context.Context, relation string) (models.IDSet, error) {
	me, err := m.self(ctx)
	if err != nil {
		return nil, err
	}

	ids := models.NewIDSet()
	path := "/api/v1/accounts/" + url.PathEscape(me.ID) + "/" + relation
	query := url.Values{"limit": {strconv.Itoa(mastodonAccountPage)}}
	for path != "" {
		var page []mastodonAccount
		header, err := m.t.getJSON(ctx, path, query, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", relation, err)
		}
		for _, a := range page {
			ids.Add(a.ID)
		}
		if len(page) == 0 {
			break
		}
		// The next link already carries every query parameter.
		path, query = nextLink(header), nil
	}
	return ids, nil
}

// FollowerIDs implements API.
func (m *Mastodon) FollowerIDs(ctx context.Context) (models.IDSet, error) {
	return m.accountIDs(ctx, "followers")
}

// FriendIDs implements API.
func (m *Mastodon) FriendIDs(ctx context.Context) (models.IDSet, error) {
	return m.accountIDs(ctx, "following")
}

// PendingFriendIDs implements API. Mastodon exposes no outgoing follow
// requests, and following a locked account again is harmless.
func (m *Mastodon) PendingFriendIDs(ctx context.Context) (models.IDSet, error) {
	return models.NewIDSet(), nil
}

// Follow implements API.
func (m *Mastodon) Follow(ctx context.Context, userID string) error {
	if err := m.t.send(ctx, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(userID)+"/follow", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to follow %s: %w", userID, err)
	}
	return nil
}

// Unfollow implements API.
func (m *Mastodon) Unfollow(ctx context.Context, userID string) error {
	if err := m.t.send(ctx, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(userID)+"/unfollow", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to unfollow %s: %w", userID, err)
	}
	return nil
}

type mastodonPost struct {
	Status      string `json:"status"`
	InReplyToID string `json:"in_reply_to_id,omitempty"`
	Visibility  string `json:"visibility"`
}

// Post implements API. Replies keep the visibility of the status they answer;
// other posts are unlisted.
func (m *Mastodon) Post(ctx context.Context, text, link string, inReplyTo *models.Status) error {
	post := mastodonPost{Visibility: models.VisibilityUnlisted}
	screenName := ""
	if inReplyTo != nil {
		post.InReplyToID = inReplyTo.ID
		screenName = inReplyTo.User.ScreenName
		if inReplyTo.Visibility != "" {
			post.Visibility = inReplyTo.Visibility
		}
	}
	post.Status = Compose(text, screenName, link, MastodonMaxLength, MastodonWeight)
	if post.Status == "" {
		return ErrEmptyStatus
	}

	header := http.Header{"Idempotency-Key": {uuid.NewString()}}
	if err := m.t.send(ctx, http.MethodPost, "/api/v1/statuses", post, header, nil); err != nil {
		return fmt.Errorf("failed to post status: %w", err)
	}
	return nil
}

var _ API = (*Mastodon)(nil)
