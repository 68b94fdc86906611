package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/lexilens/internal/config"
	"github.com/bryanwahyu/lexilens/internal/domain/ai"
)

const maxTokens = 2048

var placeholders = map[string]bool{
	"your-api-key":        true,
	"your_api_key":        true,
	"your-openai-api-key": true,
	"your_openai_api_key": true,
	"changeme":            true,
	"sk-...":              true,
	"sk-xxx":              true,
}

type Client struct {
	*openai.Client
	Model       string
	Temperature float32
}

// New returns a live client, or ai.Unavailable when the credential is unusable.
func New(cfg config.LLM) ai.Model {
	if err := ValidateKey(cfg.APIKey, cfg.KeyPrefix); err != nil {
		return ai.Unavailable{Reason: err.Error()}
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		Client:      openai.NewClientWithConfig(oc),
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	}
}

// ValidateKey rejects empty, padded and placeholder keys, and keys without
// the expected prefix when prefix is non-empty.
func ValidateKey(key, prefix string) error {
	switch {
	case key == "":
		return errors.New("API key not configured")
	case strings.TrimSpace(key) != key:
		return errors.New("API key has surrounding whitespace")
	case placeholders[strings.ToLower(key)]:
		return errors.New("API key is a placeholder value")
	case prefix != "" && !strings.HasPrefix(key, prefix):
		return fmt.Errorf("API key does not start with %q", prefix)
	}
	return nil
}

func (c *Client) Complete(ctx context.Context, r ai.Request) (string, error) {
	model := c.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: r.System},
			{Role: openai.ChatMessageRoleUser, Content: r.User},
		},
	}
	if r.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
		req.Temperature = c.Temperature
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ai.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// classify maps provider errors onto the ai sentinels.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.Code == "insufficient_quota" {
			return fmt.Errorf("%w: %s", ai.ErrQuotaExceeded, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d: %s", ai.ErrUpstream, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, reqErr.Err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ai.ErrUpstream, err)
}
