package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clinrag/internal/port"
)

// ChatClient speaks the chat-completion wire shape: role-tagged messages
// in, choices[0].message.content out.
type ChatClient struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewChatClient(baseURL, model, apiKeyEnv string, timeout time.Duration) *ChatClient {
	return &ChatClient{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKeyFromEnv(apiKeyEnv),
		client:  newHTTPClient(timeout),
	}
}

func (c *ChatClient) Generate(ctx context.Context, systemPrompt, userPrompt string, params port.GenerationParams) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	payload := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}

	body, err := postJSON(ctx, c.client, c.baseURL, c.apiKey, payload)
	if err != nil {
		return "", err
	}

	return parseChatBody(body)
}

func parseChatBody(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("backend error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("unexpected chat response format")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *ChatClient) ModelName() string {
	return c.model
}
