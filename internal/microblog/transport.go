package microblog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const maxResponseBytes = 4 << 20

// reply is a successful HTTP response.
type reply struct {
	header http.Header
	body   []byte
}

// transport performs JSON calls against one API host behind a circuit breaker.
// The breaker opens after consecutive server-side failures so a run against a
// struggling instance fails fast instead of piling up timeouts.
type transport struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*reply]
}

func newTransport(name, baseURL string, client *http.Client, logger *slog.Logger) *transport {
	if logger == nil {
		logger = slog.Default()
	}
	cb := gobreaker.NewCircuitBreaker[*reply](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !apiErr.Temporary()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "api", name, "from", from.String(), "to", to.String())
		},
	})
	return &transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		breaker: cb,
	}
}

// do sends a request. path may be absolute (pagination links) or relative to baseURL.
func (t *transport) do(ctx context.Context, method, path string, query url.Values, body any, header http.Header) (*reply, error) {
	return t.breaker.Execute(func() (*reply, error) {
		return t.roundTrip(ctx, method, path, query, body, header)
	})
}

func (t *transport) roundTrip(ctx context.Context, method, path string, query url.Values, body any, header http.Header) (*reply, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = t.baseURL + path
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   method + " " + path,
			Message:    errorMessage(data, resp.StatusCode),
		}
	}
	return &reply{header: resp.Header, body: data}, nil
}

// getJSON fetches path and decodes the body into out.
func (t *transport) getJSON(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	r, err := t.do(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return nil, fmt.Errorf("invalid response from %s: %w", path, err)
	}
	return r.header, nil
}

// send issues a write request; out may be nil when the response body is irrelevant.
func (t *transport) send(ctx context.Context, method, path string, body any, header http.Header, out any) error {
	r, err := t.do(ctx, method, path, nil, body, header)
	if err != nil {
		return err
	}
	if out == nil || len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("invalid response from %s: %w", path, err)
	}
	return nil
}

// errorMessage extracts a human-readable message from Mastodon
// ({"error": "..."}) or Twitter v2 ({"title", "detail"} / {"errors": [...]}) errors.
func errorMessage(body []byte, status int) string {
	var e struct {
		Error  string `json:"error"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &e) == nil {
		switch {
		case e.Error != "":
			return e.Error
		case e.Detail != "":
			return e.Detail
		case e.Title != "":
			return e.Title
		case len(e.Errors) > 0 && e.Errors[0].Message != "":
			return e.Errors[0].Message
		}
	}
	return http.StatusText(status)
}

// nextLink returns the rel="next" target of an RFC 8288 Link header.
func nextLink(header http.Header) string {
	for _, link := range strings.Split(header.Get("Link"), ",") {
		parts := strings.Split(link, ";")
		if len(parts) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(parts[0]), "<>")
		for _, p := range parts[1:] {
			if strings.ReplaceAll(strings.TrimSpace(p), " ", "") == `rel="next"` {
				return target
			}
		}
	}
	return ""
}
