// Package chat talks to the Gemini API for text generation. The studio uses
// it to turn a lesson body into a multiple-choice quiz.
package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ClientOption customizes NewGeminiClient.
type ClientOption func(*genai.ClientConfig)

// WithBaseURL points the client at a different API endpoint, e.g. a proxy or
// a test server.
func WithBaseURL(url string) ClientOption {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = url
	}
}

// NewGeminiClient creates a Gemini API client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, apiKey string, opts ...ClientOption) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Debug().Str("base_url", cfg.HTTPOptions.BaseURL).Msg("Gemini client created")
	return client, nil
}
