// Package alert sends operator alerts to a Slack incoming webhook.
package alert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Service posts messages to a Slack incoming webhook.
type Service struct {
	webhookURL string
	client     *http.Client
	enabled    bool
}

// NewService creates a webhook service. It is disabled when webhookURL is empty.
func NewService(webhookURL string, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Service{
		webhookURL: webhookURL,
		client:     client,
		enabled:    webhookURL != "",
	}
}

// IsEnabled returns true if a webhook is configured.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

type message struct {
	Text string `json:"text"`
}

// Send posts text to the webhook.
func (s *Service) Send(ctx context.Context, text string) error {
	if !s.enabled || text == "" {
		return nil
	}

	payload, err := json.Marshal(message{Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send alert: webhook returned %d", resp.StatusCode)
	}
	return nil
}
