package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type keyphraseRequest struct {
	ID      string          `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  keyphraseParams `json:"params"`
}

type keyphraseParams struct {
	Q string `json:"q"`
}

type keyphrase struct {
	Point int    `json:"point"`
	Text  string `json:"text"`
}

type keyphraseResponse struct {
	errorEnvelope
	Result struct {
		Phrases []keyphrase `json:"phrases"`
	} `json:"result"`
}

// KeyphraseExtractor extracts ranked keyphrases with the Keyphrase API (v2).
type KeyphraseExtractor struct {
	client *Client
}

// NewKeyphraseExtractor creates an extractor backed by client.
func NewKeyphraseExtractor(client *Client) *KeyphraseExtractor {
	return &KeyphraseExtractor{client: client}
}

// Extract returns the keyphrases of text, most salient first.
// Phrases with equal scores keep the order the API returned them in.
func (e *KeyphraseExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	payload, err := json.Marshal(keyphraseRequest{
		ID:      uuid.NewString(),
		JSONRPC: "2.0",
		Method:  "jlp.keyphraseservice.extract",
		Params:  keyphraseParams{Q: text},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode keyphrase request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.client.keyphraseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create keyphrase request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp keyphraseResponse
	if err := e.client.do(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to extract keyphrases: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("failed to extract keyphrases: %w",
			&APIError{StatusCode: http.StatusOK, Code: resp.Error.Code, Message: resp.Error.Message})
	}

	phrases := resp.Result.Phrases
	slices.SortStableFunc(phrases, func(a, b keyphrase) int {
		return b.Point - a.Point
	})

	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, p.Text)
	}
	return out, nil
}
