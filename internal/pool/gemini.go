package pool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Default Gemini models, tried in this order.
const (
	PrimaryModel  = "gemma-3-27b-it"
	FallbackModel = "gemma-3-12b-it"
)

// Gemini generates passages with one model through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGeminiClient connects to the Gemini API with apiKey.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// NewGemini returns a provider for model over a shared client.
func NewGemini(client *genai.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

// GeminiProviders builds the primary and fallback providers for models,
// defaulting to PrimaryModel then FallbackModel.
func GeminiProviders(client *genai.Client, models ...string) []Provider {
	if len(models) == 0 {
		models = []string{PrimaryModel, FallbackModel}
	}
	providers := make([]Provider, 0, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			providers = append(providers, NewGemini(client, m))
		}
	}
	return providers
}

func (g *Gemini) Name() string {
	return g.model
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned no text")
	}
	return text, nil
}
