package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("received empty response from Gemini API")

// QuizGenerator produces quiz text from a prompt with a single
// GenerateContent call.
type QuizGenerator struct {
	client *genai.Client
	model  string
}

// NewQuizGenerator creates a QuizGenerator. An empty model selects
// DefaultModelName.
func NewQuizGenerator(client *genai.Client, model string) *QuizGenerator {
	return &QuizGenerator{client: client, model: ModelOrDefault(model)}
}

// Model returns the model the generator calls.
func (g *QuizGenerator) Model() string {
	return g.model
}

// Generate sends prompt and returns the model's text answer.
func (g *QuizGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	log.Debug().
		Str("model", g.model).
		Int("prompt_length", len(prompt)).
		Msg("Starting Gemini API call for quiz generation")

	callStart := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Failed to generate quiz from Gemini")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		log.Warn().Dur("duration", duration).Msg("Gemini returned an empty quiz")
		return "", ErrEmptyResponse
	}

	log.Debug().
		Int("response_length", len(text)).
		Dur("duration", duration).
		Msg("Gemini API response received for quiz generation")
	return text, nil
}
