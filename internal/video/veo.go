// Package video resolves educational video references with Veo, Gemini's
// video model. Generation is a long-running operation; Resolve starts it and
// polls until the video is ready, the operation fails, or ctx is done.
package video

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/edu-studio/internal/assets"
	"github.com/fpang/edu-studio/internal/lesson"
)

// DefaultModel is the Veo model used when video generation is enabled
// without naming a model.
const DefaultModel = "veo-3.0-fast-generate-001"

const (
	initialPollInterval = 5 * time.Second
	maxPollInterval     = 30 * time.Second
)

// operations is the slice of the genai API the resolver needs.
type operations interface {
	start(ctx context.Context, model, prompt string) (*genai.GenerateVideosOperation, error)
	poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

type genaiOperations struct {
	client *genai.Client
}

func (g genaiOperations) start(ctx context.Context, model, prompt string) (*genai.GenerateVideosOperation, error) {
	return g.client.Models.GenerateVideos(ctx, model, prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	})
}

func (g genaiOperations) poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return g.client.Operations.GetVideosOperation(ctx, op, nil)
}

// VeoResolver generates a video per lesson title.
type VeoResolver struct {
	ops             operations
	model           string
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewVeoResolver creates a resolver calling model through client. An empty
// model selects DefaultModel.
func NewVeoResolver(client *genai.Client, model string) *VeoResolver {
	if model == "" {
		model = DefaultModel
	}
	var ops operations
	if client != nil {
		ops = genaiOperations{client: client}
	}
	return &VeoResolver{
		ops:             ops,
		model:           model,
		initialInterval: initialPollInterval,
		maxInterval:     maxPollInterval,
	}
}

// Model returns the Veo model the resolver calls.
func (r *VeoResolver) Model() string {
	return r.model
}

// Supported reports whether the resolver has a client to call.
func (r *VeoResolver) Supported() bool {
	return r != nil && r.ops != nil
}

// Resolve generates a video about title and returns its URI. A backend that
// does not offer the model yields an error wrapping lesson.ErrVideoUnsupported.
func (r *VeoResolver) Resolve(ctx context.Context, title string) (lesson.Video, error) {
	if !r.Supported() {
		return lesson.Video{}, lesson.ErrVideoUnsupported
	}

	prompt := assets.RenderVideoPrompt(title)
	logger := log.With().Str("model", r.model).Str("title", title).Logger()
	logger.Debug().Int("prompt_length", len(prompt)).Msg("Starting Veo video generation")

	start := time.Now()
	op, err := r.ops.start(ctx, r.model, prompt)
	if err != nil {
		if isUnsupported(err) {
			return lesson.Video{}, fmt.Errorf("%w: %v", lesson.ErrVideoUnsupported, err)
		}
		return lesson.Video{}, fmt.Errorf("failed to start video generation: %w", err)
	}

	op, err = r.wait(ctx, op)
	if err != nil {
		return lesson.Video{}, err
	}

	uri, err := videoURI(op)
	if err != nil {
		return lesson.Video{}, err
	}
	logger.Info().Dur("duration", time.Since(start)).Str("uri", uri).Msg("Veo video ready")
	return lesson.Video{URL: uri, Source: lesson.VideoResolved}, nil
}

// wait polls op until it is done. Uses exponential backoff from
// initialInterval up to maxInterval. Poll errors are treated as transient.
func (r *VeoResolver) wait(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	interval := r.initialInterval
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		next, err := r.ops.poll(ctx, op)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("operation", op.Name).Msg("Video operation poll error, retrying")
		} else {
			op = next
			log.Debug().Str("operation", op.Name).Bool("done", op.Done).Dur("nextPoll", interval).Msg("Video operation polled")
		}

		interval *= 2
		if interval > r.maxInterval {
			interval = r.maxInterval
		}
	}
	return op, nil
}

func videoURI(op *genai.GenerateVideosOperation) (string, error) {
	if len(op.Error) > 0 {
		return "", fmt.Errorf("video operation %s failed: %v", op.Name, op.Error["message"])
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return "", fmt.Errorf("video operation %s returned no video", op.Name)
	}
	v := op.Response.GeneratedVideos[0].Video
	if v == nil || v.URI == "" {
		return "", fmt.Errorf("video operation %s returned a video without URI", op.Name)
	}
	return v.URI, nil
}

// isUnsupported reports whether err means the model is not available for the
// key at all, as opposed to a transient failure.
func isUnsupported(err error) bool {
	var code int
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}
	if code == http.StatusNotFound {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "is not supported") || strings.Contains(msg, "not found for api version")
}

// Disabled is the VideoClient used when no video model is configured. Every
// request falls back to a simulated reference.
type Disabled struct{}

// Supported always reports false.
func (Disabled) Supported() bool { return false }

// Resolve always fails with lesson.ErrVideoUnsupported.
func (Disabled) Resolve(context.Context, string) (lesson.Video, error) {
	return lesson.Video{}, lesson.ErrVideoUnsupported
}
