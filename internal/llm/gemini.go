package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify(err)
	}
	if result == nil {
		return "", fmt.Errorf("%w: no response generated", ErrUnavailable)
	}

	text, err := result.Text()
	if err != nil {
		return "", fmt.Errorf("%w: extracting response text: %v", ErrUnavailable, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty response generated", ErrUnavailable)
	}

	return text, nil
}

func (c *GeminiClient) Name() string {
	return "gemini"
}

// classify maps a provider error onto one of the package error kinds.
// The genai SDK does not expose structured status codes on every path,
// so this falls back to inspecting the message.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	msg := strings.ToUpper(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case strings.Contains(msg, "400") || strings.Contains(msg, "INVALID_ARGUMENT"):
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	case strings.Contains(msg, "DEADLINE"):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
