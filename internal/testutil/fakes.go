package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"

	"nagato/internal/models"
)

// Post is a status published through FakeAPI.
type Post struct {
	Text      string
	URL       string
	InReplyTo *models.Status
}

// FakeAPI is an in-memory microblog.API. Set the exported fields before use;
// an error in Err is returned by every call.
type FakeAPI struct {
	mu sync.Mutex

	Me             models.User
	HomeStatuses   []models.Status
	UserStatuses   map[string][]models.Status
	MentionList    []models.Status
	Followers      models.IDSet
	Friends        models.IDSet
	PendingFriends models.IDSet
	Posts          []Post
	Err            error

	// MentionsSince records the sinceID of every Mentions call.
	MentionsSince []string
}

// NewFakeAPI returns a fake signed in as me with empty timelines.
func NewFakeAPI(me models.User) *FakeAPI {
	return &FakeAPI{
		Me:             me,
		UserStatuses:   map[string][]models.Status{},
		Followers:      models.NewIDSet(),
		Friends:        models.NewIDSet(),
		PendingFriends: models.NewIDSet(),
	}
}

func (f *FakeAPI) VerifyCredentials(ctx context.Context) (models.User, error) {
	return f.Me, f.Err
}

func (f *FakeAPI) HomeTimeline(ctx context.Context) ([]models.Status, error) {
	return f.HomeStatuses, f.Err
}

func (f *FakeAPI) UserTimeline(ctx context.Context, userID string) ([]models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.UserStatuses[userID], f.Err
}

// Mentions returns MentionList entries newer than sinceID, newest first.
func (f *FakeAPI) Mentions(ctx context.Context, sinceID string) ([]models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MentionsSince = append(f.MentionsSince, sinceID)
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.Status
	for _, s := range f.MentionList {
		if sinceID == "" || models.CompareIDs(s.ID, sinceID) > 0 {
			out = append(out, s)
		}
	}
	slices.Reverse(out)
	return out, nil
}

func (f *FakeAPI) FollowerIDs(ctx context.Context) (models.IDSet, error) {
	return f.Followers, f.Err
}

func (f *FakeAPI) FriendIDs(ctx context.Context) (models.IDSet, error) {
	return f.Friends, f.Err
}

func (f *FakeAPI) PendingFriendIDs(ctx context.Context) (models.IDSet, error) {
	return f.PendingFriends, f.Err
}

func (f *FakeAPI) Follow(ctx context.Context, userID string) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Friends.Add(userID)
	return nil
}

func (f *FakeAPI) Unfollow(ctx context.Context, userID string) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Friends, userID)
	return nil
}

// Post records the post and prepends it to the bot's own timeline.
func (f *FakeAPI) Post(ctx context.Context, text, url string, inReplyTo *models.Status) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Posts = append(f.Posts, Post{Text: text, URL: url, InReplyTo: inReplyTo})

	own := models.Status{Text: text, User: f.Me}
	if inReplyTo != nil {
		own.InReplyToStatusID = inReplyTo.ID
		own.InReplyToUserID = inReplyTo.User.ID
	}
	f.UserStatuses[f.Me.ID] = append([]models.Status{own}, f.UserStatuses[f.Me.ID]...)
	return nil
}

// StubOracle answers book searches from a table keyed by the space-joined
// terms. Unknown queries return Default and DefaultCount.
type StubOracle struct {
	Results      map[string]StubResult
	Default      *models.Book
	DefaultCount int
	Err          error
	Queries      [][]string
}

// StubResult is one canned search result.
type StubResult struct {
	Book  *models.Book
	Count int
}

func (o *StubOracle) Search(ctx context.Context, terms []string) (*models.Book, int, error) {
	o.Queries = append(o.Queries, slices.Clone(terms))
	if o.Err != nil {
		return nil, 0, o.Err
	}
	if r, ok := o.Results[strings.Join(terms, " ")]; ok {
		return r.Book, r.Count, nil
	}
	return o.Default, o.DefaultCount, nil
}

// StubExtractor returns Keyphrases for any text and records the texts it saw.
type StubExtractor struct {
	Keyphrases []string
	Err        error
	Texts      []string
}

func (e *StubExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	e.Texts = append(e.Texts, text)
	return e.Keyphrases, e.Err
}
