// Package yahoo talks to the Yahoo! JAPAN developer APIs used by the bot:
// keyphrase extraction and the shopping item search.
package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// Default endpoints
const (
	DefaultKeyphraseURL  = "https://jlp.yahooapis.jp/KeyphraseService/V2/extract"
	DefaultItemSearchURL = "https://shopping.yahooapis.jp/ShoppingWebService/V3/itemSearch"
)

const maxResponseBytes = 1 << 20

// APIError is an error reported by a Yahoo! API.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("yahoo api error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("yahoo api error (status %d): %s", e.StatusCode, e.Message)
}

// errorEnvelope covers both the shopping API ("Error": {"Message"}) and the
// JSON-RPC APIs ("error": {"code", "message"}); field matching is case-insensitive.
type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client performs authenticated, rate-limited calls to Yahoo! APIs.
type Client struct {
	appID         string
	http          *http.Client
	limiter       *rate.Limiter
	keyphraseURL  string
	itemSearchURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit paces requests to rps per second. Zero or less disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithEndpoints overrides the API URLs, mainly for tests.
func WithEndpoints(keyphraseURL, itemSearchURL string) Option {
	return func(c *Client) {
		c.keyphraseURL = keyphraseURL
		c.itemSearchURL = itemSearchURL
	}
}

// NewClient creates a client for the given application ID.
func NewClient(appID string, opts ...Option) *Client {
	c := &Client{
		appID:         appID,
		http:          &http.Client{Timeout: 10 * time.Second},
		limiter:       rate.NewLimiter(rate.Limit(5), 1),
		keyphraseURL:  DefaultKeyphraseURL,
		itemSearchURL: DefaultItemSearchURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends req and decodes a successful JSON response into out.
func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req.Header.Set("User-Agent", "Yahoo AppID: "+c.appID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid response format: %w", err)
	}
	return nil
}
