package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/edu-studio/internal/lesson"
)

const (
	// supabaseRESTPath is the PostgREST mount point of a Supabase project.
	supabaseRESTPath = "/rest/v1/"

	// defaultHTTPTimeout is the HTTP client timeout for REST calls.
	defaultHTTPTimeout = 30 * time.Second
)

// SupabaseStore inserts lessons through a Supabase project's REST API.
type SupabaseStore struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	table      string
}

var _ ContentStore = (*SupabaseStore)(nil)

// NewSupabaseStore creates a store for the project at projectURL
// (https://<ref>.supabase.co) authenticated with apiKey.
func NewSupabaseStore(projectURL, apiKey string) *SupabaseStore {
	return &SupabaseStore{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    strings.TrimRight(projectURL, "/"),
		apiKey:     apiKey,
		table:      ContentsTable,
	}
}

// postgrestError is the error body PostgREST returns on non-2xx responses.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// APIError is a non-2xx answer from the Supabase REST API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase API error %d: %s", e.StatusCode, e.Message)
}

// Insert posts rec as a new row.
func (s *SupabaseStore) Insert(ctx context.Context, rec lesson.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	endpoint := s.baseURL + supabaseRESTPath + s.table
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Debug().Int("statusCode", 0).Dur("duration", duration).Err(err).Msg("Supabase API response")
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().Int("statusCode", resp.StatusCode).Dur("duration", duration).Str("table", s.table).Msg("Supabase API response")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: truncate(string(body), 200)}
	var pe postgrestError
	if json.Unmarshal(body, &pe) == nil && pe.Message != "" {
		apiErr.Code = pe.Code
		apiErr.Message = pe.Message
	}
	log.Error().Int("statusCode", resp.StatusCode).Str("code", apiErr.Code).Str("errorMessage", apiErr.Message).Msg("Supabase insert failed")
	return apiErr
}

// Close releases idle HTTP connections.
func (s *SupabaseStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// truncate returns the first n bytes of s, appending "..." if truncated.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
