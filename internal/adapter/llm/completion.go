package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"context"

	"clinrag/internal/port"
)

// CompletionClient speaks the simple-completion wire shape: a single
// inputs string in, generated_text out. The system and user prompts are
// folded into one prompt because the shape has no message roles.
type CompletionClient struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

type completionRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters completionParameters `json:"parameters"`
}

type completionParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	DoSample     bool    `json:"do_sample"`
}

type completionResponse struct {
	GeneratedText string `json:"generated_text"`
}

func NewCompletionClient(baseURL, model, apiKeyEnv string, timeout time.Duration) *CompletionClient {
	return &CompletionClient{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKeyFromEnv(apiKeyEnv),
		client:  newHTTPClient(timeout),
	}
}

func (c *CompletionClient) Generate(ctx context.Context, systemPrompt, userPrompt string, params port.GenerationParams) (string, error) {
	prompt := userPrompt
	if systemPrompt != "" {
		prompt = systemPrompt + "\n\n" + userPrompt
	}

	payload := completionRequest{
		Inputs: prompt,
		Parameters: completionParameters{
			MaxNewTokens: params.MaxTokens,
			Temperature:  params.Temperature,
			DoSample:     params.DoSample || params.Temperature > 0,
		},
	}

	body, err := postJSON(ctx, c.client, c.baseURL, c.apiKey, payload)
	if err != nil {
		return "", err
	}

	return parseCompletionBody(body)
}

// parseCompletionBody accepts both response spellings backends use:
// a single object or a one-element array.
func parseCompletionBody(body []byte) (string, error) {
	var single completionResponse
	if err := json.Unmarshal(body, &single); err == nil && single.GeneratedText != "" {
		return strings.TrimSpace(single.GeneratedText), nil
	}

	var list []completionResponse
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 && list[0].GeneratedText != "" {
		return strings.TrimSpace(list[0].GeneratedText), nil
	}

	return "", fmt.Errorf("unexpected completion response format")
}

func (c *CompletionClient) ModelName() string {
	return c.model
}
