package yahoo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nagato/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-app",
		WithHTTPClient(srv.Client()),
		WithRateLimit(0),
		WithEndpoints(srv.URL+"/keyphrase", srv.URL+"/itemSearch"))
}

func TestKeyphraseExtractor_Extract(t *testing.T) {
	var got keyphraseRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/keyphrase", r.URL.Path)
		assert.Equal(t, "Yahoo AppID: test-app", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		_, _ = io.WriteString(w, `{"id":"x","jsonrpc":"2.0","result":{"phrases":[
			{"point":40,"text":"book"},
			{"point":100,"text":"nagato"},
			{"point":60,"text":"cute"},
			{"point":40,"text":"library"}
		]}}`)
	})

	phrases, err := NewKeyphraseExtractor(client).Extract(context.Background(), "Nagato is cute.")
	require.NoError(t, err)
	assert.Equal(t, []string{"nagato", "cute", "book", "library"}, phrases)
	assert.Equal(t, "2.0", got.JSONRPC)
	assert.Equal(t, "jlp.keyphraseservice.extract", got.Method)
	assert.Equal(t, "Nagato is cute.", got.Params.Q)
	assert.NotEmpty(t, got.ID)
}

func TestKeyphraseExtractor_EmptyText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty text")
	})

	phrases, err := NewKeyphraseExtractor(client).Extract(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, phrases)
}

func TestKeyphraseExtractor_RPCError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"x","jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params"}}`)
	})

	_, err := NewKeyphraseExtractor(client).Extract(context.Background(), "text")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, -32602, apiErr.Code)
	assert.Equal(t, "Invalid params", apiErr.Message)
}

func TestBookSearch_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/itemSearch", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-app", q.Get("appid"))
		assert.Equal(t, "nagato cute", q.Get("query"))
		assert.Equal(t, "10002", q.Get("genre_category_id"))
		assert.Equal(t, "1", q.Get("results"))
		assert.Equal(t, "-score", q.Get("sort"))

		_, _ = io.WriteString(w, `{"totalResultsAvailable":42,"totalResultsReturned":1,"firstResultsPosition":1,
			"hits":[{"name":"Cute nagato book","url":"https://www.example.com/#cute_nagato_book"}]}`)
	})

	book, count, err := NewBookSearch(client, 10002, "-score").Search(context.Background(), []string{"nagato", "cute"})
	require.NoError(t, err)
	assert.Equal(t, &models.Book{Name: "Cute nagato book", URL: "https://www.example.com/#cute_nagato_book"}, book)
	assert.Equal(t, 42, count)
}

func TestBookSearch_NoHits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"totalResultsAvailable":0,"totalResultsReturned":0,"hits":[]}`)
	})

	book, count, err := NewBookSearch(client, 10002, "").Search(context.Background(), []string{"nothing"})
	require.NoError(t, err)
	assert.Nil(t, book)
	assert.Zero(t, count)
}

func TestBookSearch_EmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty query")
	})

	book, count, err := NewBookSearch(client, 10002, "").Search(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, book)
	assert.Zero(t, count)
}

func TestBookSearch_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"Error":{"Message":"Your Request was Forbidden"}}`)
	})

	_, _, err := NewBookSearch(client, 10002, "").Search(context.Background(), []string{"a"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Your Request was Forbidden", apiErr.Message)
	assert.Contains(t, err.Error(), "failed to search items")
}

func TestBookSearch_ServerErrorWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, _, err := NewBookSearch(client, 10002, "").Search(context.Background(), []string{"a"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Service Unavailable", apiErr.Message)
}

func TestBookSearch_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	_, _, err := NewBookSearch(client, 10002, "").Search(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid response format"))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"totalResultsAvailable":0,"totalResultsReturned":0}`)
	})
	WithRateLimit(0.001)(client)

	// The first call consumes the only token.
	_, _, err := NewBookSearch(client, 0, "").Search(context.Background(), []string{"a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, err = NewBookSearch(client, 0, "").Search(ctx, []string{"b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
