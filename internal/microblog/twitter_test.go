package microblog

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nagato/internal/models"
)

func newTestTwitter(t *testing.T, mux *http.ServeMux) *Twitter {
	t.Helper()
	mux.HandleFunc("GET /2/users/me", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"id":"42","name":"Nagato","username":"nagato_bot"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewTwitter(srv.URL, srv.Client(), nil)
}

func TestTwitter_VerifyCredentials(t *testing.T) {
	me, err := newTestTwitter(t, http.NewServeMux()).VerifyCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: "42", ScreenName: "nagato_bot"}, me)
}

func TestTwitter_Mentions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /2/users/42/mentions", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "100", q.Get("since_id"))
		assert.Equal(t, "author_id", q.Get("expansions"))
		assert.Contains(t, q.Get("tweet.fields"), "referenced_tweets")
		_, _ = io.WriteString(w, `{
			"data":[
				{"id":"102","text":"@nagato_bot 面白い本","author_id":"7","created_at":"2024-01-02T03:04:05.000Z",
				 "in_reply_to_user_id":"42","referenced_tweets":[{"type":"replied_to","id":"101"}]},
				{"id":"103","text":"@nagato_bot おはよう","author_id":"8","created_at":"2024-01-02T03:05:05.000Z"}
			],
			"includes":{"users":[{"id":"7","username":"alice"},{"id":"8","username":"bob"}]},
			"meta":{"result_count":2}
		}`)
	})

	mentions, err := newTestTwitter(t, mux).Mentions(context.Background(), "100")
	require.NoError(t, err)
	require.Len(t, mentions, 2)
	assert.Equal(t, models.User{ID: "7", ScreenName: "alice"}, mentions[0].User)
	assert.Equal(t, "101", mentions[0].InReplyToStatusID)
	assert.Equal(t, "42", mentions[0].InReplyToUserID)
	assert.Equal(t, "bob", mentions[1].User.ScreenName)
	assert.False(t, mentions[1].IsReply())
}

func TestTwitter_MentionsWithoutCursor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /2/users/42/mentions", func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("since_id"))
		_, _ = io.WriteString(w, `{"meta":{"result_count":0}}`)
	})

	mentions, err := newTestTwitter(t, mux).Mentions(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, mentions)
}

func TestTwitter_FriendIDs_Paginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /2/users/42/following", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pagination_token") {
		case "":
			_, _ = io.WriteString(w, `{"data":[{"id":"1"},{"id":"2"}],"meta":{"result_count":2,"next_token":"page2"}}`)
		case "page2":
			_, _ = io.WriteString(w, `{"data":[{"id":"3"}],"meta":{"result_count":1}}`)
		default:
			t.Errorf("unexpected token %q", r.URL.Query().Get("pagination_token"))
		}
	})

	ids, err := newTestTwitter(t, mux).FriendIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.NewIDSet("1", "2", "3"), ids)
}

func TestTwitter_FollowUnfollow(t *testing.T) {
	var followed, unfollowed string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /2/users/42/following", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		followed = body["target_user_id"]
		_, _ = io.WriteString(w, `{"data":{"following":true}}`)
	})
	mux.HandleFunc("DELETE /2/users/42/following/{id}", func(w http.ResponseWriter, r *http.Request) {
		unfollowed = r.PathValue("id")
		_, _ = io.WriteString(w, `{"data":{"following":false}}`)
	})

	tw := newTestTwitter(t, mux)
	require.NoError(t, tw.Follow(context.Background(), "7"))
	require.NoError(t, tw.Unfollow(context.Background(), "8"))
	assert.Equal(t, "7", followed)
	assert.Equal(t, "8", unfollowed)
}

func TestTwitter_PostReply(t *testing.T) {
	var got tweetPost
	mux := http.NewServeMux()
	mux.HandleFunc("POST /2/tweets", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":"200","text":"ok"}}`)
	})

	inReplyTo := &models.Status{ID: "102", User: models.User{ID: "7", ScreenName: "alice"}}
	err := newTestTwitter(t, mux).Post(context.Background(), "Cute nagato book", "https://example.com/b", inReplyTo)
	require.NoError(t, err)
	assert.Equal(t, "@alice Cute nagato book https://example.com/b", got.Text)
	require.NotNil(t, got.Reply)
	assert.Equal(t, "102", got.Reply.InReplyToTweetID)
}

func TestTwitter_PendingFriendIDsIsEmpty(t *testing.T) {
	ids, err := newTestTwitter(t, http.NewServeMux()).PendingFriendIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
