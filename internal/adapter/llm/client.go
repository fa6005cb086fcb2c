// Package llm provides the two normalized model backend adapters: a
// simple-completion shape (TGI-style) and a chat-completion shape
// (OpenAI-style). Both satisfy port.ModelClient, so the router behaves
// identically regardless of which wire shape a backend speaks.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"clinrag/internal/port"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// postJSON sends the payload and returns the response body. Non-2xx
// statuses and transport failures are errors; the context bounds the
// whole exchange.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, preview)
	}

	return body, nil
}

func apiKeyFromEnv(apiKeyEnv string) string {
	if apiKeyEnv == "" {
		return ""
	}
	return os.Getenv(apiKeyEnv)
}

// New builds a client for the given wire style.
func New(style, baseURL, model, apiKeyEnv string, timeout time.Duration) (port.ModelClient, error) {
	switch style {
	case "chat":
		return NewChatClient(baseURL, model, apiKeyEnv, timeout), nil
	case "completion", "":
		return NewCompletionClient(baseURL, model, apiKeyEnv, timeout), nil
	default:
		return nil, fmt.Errorf("unknown wire style %q", style)
	}
}
