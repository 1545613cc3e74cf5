package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/genai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api 401", genai.APIError{Code: 401, Message: "unauthenticated"}, ReasonInvalidKey},
		{"api 403 pointer", &genai.APIError{Code: 403}, ReasonInvalidKey},
		{"api 429 wrapped", fmt.Errorf("failed to generate content: %w", genai.APIError{Code: 429}), ReasonQuota},
		{"api 503", genai.APIError{Code: 503}, ReasonNetwork},
		{"api 418", genai.APIError{Code: 418, Message: "teapot"}, ReasonUnknown},
		{"message invalid key", errors.New("API key not valid. Please pass a valid API key."), ReasonInvalidKey},
		{"message quota", errors.New("Resource exhausted: quota exceeded"), ReasonQuota},
		{"message dial", errors.New("dial tcp: lookup generativelanguage.googleapis.com: no such host"), ReasonNetwork},
		{"canceled", fmt.Errorf("call: %w", context.Canceled), ReasonCanceled},
		{"deadline", context.DeadlineExceeded, ReasonTimeout},
		{"validation error", &ValidationError{Type: ErrTypeQuotaExceeded, Message: "x"}, ReasonQuota},
		{"other", errors.New("boom"), ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if got := Classify(nil); got != "" {
		t.Errorf("Classify(nil) = %q, want empty", got)
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &ValidationError{Type: ErrTypeUnknown, Message: "failed", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected ValidationError to unwrap to its cause")
	}
	if err.Error() != "failed: cause" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func newTestClient(t *testing.T, status int, body string) *genai.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	if err != nil {
		t.Fatalf("genai.NewClient() error = %v", err)
	}
	return client
}

func TestValidateAPIKeySuccess(t *testing.T) {
	client := newTestClient(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"hello"}]}}]}`)

	if err := ValidateAPIKey(context.Background(), client, "gemini-3-flash-preview"); err != nil {
		t.Errorf("ValidateAPIKey() error = %v", err)
	}
}

func TestValidateAPIKeyInvalid(t *testing.T) {
	client := newTestClient(t, http.StatusForbidden,
		`{"error":{"code":403,"message":"Permission denied","status":"PERMISSION_DENIED"}}`)

	err := ValidateAPIKey(context.Background(), client, "gemini-3-flash-preview")

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if valErr.Type != ErrTypeInvalidKey {
		t.Errorf("type = %d, want ErrTypeInvalidKey", valErr.Type)
	}
}

func TestValidateAPIKeyNoClient(t *testing.T) {
	err := ValidateAPIKey(context.Background(), nil, "m")

	var valErr *ValidationError
	if !errors.As(err, &valErr) || valErr.Type != ErrTypeNoKey {
		t.Errorf("error = %v, want ErrTypeNoKey", err)
	}
}
