package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/edu-studio/internal/auth"
)

// CheckGeminiKey validates the API key behind client against model.
func CheckGeminiKey(ctx context.Context, client *genai.Client, model string) error {
	log.Info().Str("model", model).Msg("Validating Gemini API key")
	if err := auth.ValidateAPIKey(ctx, client, model); err != nil {
		return err
	}
	log.Info().Msg("API key validation complete - ready for operations")
	return nil
}
