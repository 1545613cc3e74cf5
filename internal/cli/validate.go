package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fpang/edu-studio/internal/auth"
	"github.com/fpang/edu-studio/internal/config"
)

// maxBodyFileSize caps lesson body files.
const maxBodyFileSize = 1 << 20

// ReadBodyFile checks that path exists and is a regular file of reasonable
// size, then returns its contents as the lesson body.
func ReadBodyFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("failed to access %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory: %s", path)
	}
	if info.Size() > maxBodyFileSize {
		return "", fmt.Errorf("file too large: %s (%d bytes)", filepath.Base(path), info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// DescribeStartupError turns a configuration or API key validation failure
// into advice for the educator.
func DescribeStartupError(err error) string {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return fmt.Sprintf("%v. Set them in the environment or in a .env file", err)
	}

	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeNoKey:
			return "No API key configured. Set GOOGLE_API_KEY in the environment or .env"
		case auth.ErrTypeInvalidKey:
			return "Invalid API key. Please check your API key and try again"
		case auth.ErrTypeNetworkError:
			return "Network error. Please check your internet connection"
		case auth.ErrTypeQuotaExceeded:
			return "API quota exceeded. Please try again later or check your usage limits"
		default:
			return fmt.Sprintf("API key validation failed: %v", err)
		}
	}
	return err.Error()
}
