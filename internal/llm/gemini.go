package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator generates text via Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator for one Gemini model. endpoint
// optionally overrides the API base URL.
func NewGeminiGenerator(model, apiKey, endpoint string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cfg := &genai.ClientConfig{APIKey: apiKey}
	if endpoint != "" {
		cfg.HTTPOptions.BaseURL = endpoint
	}

	client, err := genai.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate produces text for a prompt. Safety-blocked generations return an
// empty string, not an error; the caller substitutes the placeholder.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return result.Text(), nil
}
