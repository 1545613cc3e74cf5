// Package workflow is the generation-and-export controller behind the
// studio. It sequences the quiz, image and persistence steps of a publish
// cycle, runs video generation on an independent axis, and gates document
// export on a successful publish.
//
// The publish axis and the video axis are guarded by separate mutexes and
// external calls run outside any lock, so a slow publish never blocks a
// video request or the other way round.
package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/edu-studio/internal/assets"
	"github.com/fpang/edu-studio/internal/lesson"
	"github.com/fpang/edu-studio/internal/metrics"
)

// Default budgets for external calls.
const (
	DefaultCallTimeout  = 60 * time.Second
	DefaultVideoTimeout = 5 * time.Minute
)

// Step names, used as service names in errors and as metric dimensions.
const (
	StepQuiz    = "quiz"
	StepPersist = "persist"
	StepVideo   = "video"
	StepExport  = "export"
)

// Options tunes a Controller. Zero values pick the defaults.
type Options struct {
	// CallTimeout bounds the quiz and persistence calls.
	CallTimeout time.Duration
	// VideoTimeout bounds a video resolution, including any polling.
	VideoTimeout time.Duration
	// Prompt builds the quiz prompt from the lesson body.
	Prompt func(body string) string
	// Classify labels a service failure for ServiceError.Reason.
	Classify func(error) string
	// NewCycleID allocates publish cycle identifiers.
	NewCycleID func() string
	Now        func() time.Time
}

type publishAxis struct {
	mu          sync.Mutex
	state       State
	cycle       string
	publication *Publication
	err         string
}

type videoAxis struct {
	mu    sync.Mutex
	state State
	title string
	ref   *lesson.Video
	err   string
}

// Controller drives publish cycles, video generation and export for one
// studio session. It is safe for concurrent use and reusable across any
// number of cycles.
type Controller struct {
	clients Clients
	opts    Options

	pub publishAxis
	vid videoAxis

	lmu          sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// New creates a Controller. Clients.Quiz and Clients.Store are required.
func New(clients Clients, opts Options) *Controller {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.VideoTimeout <= 0 {
		opts.VideoTimeout = DefaultVideoTimeout
	}
	if opts.Prompt == nil {
		opts.Prompt = assets.RenderQuizPrompt
	}
	if opts.Classify == nil {
		opts.Classify = defaultClassify
	}
	if opts.NewCycleID == nil {
		opts.NewCycleID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		clients:   clients,
		opts:      opts,
		pub:       publishAxis{state: StateIdle},
		vid:       videoAxis{state: StateIdle},
		listeners: make(map[int]Listener),
	}
}

// Publish runs one publish cycle for draft: quiz, image reference, then the
// content store write. The cycle is all-or-nothing; on failure no part of it
// stays visible. An incomplete draft is rejected with a *ValidationError
// before any external call and leaves the state untouched.
func (c *Controller) Publish(ctx context.Context, draft lesson.Draft) (State, error) {
	if !draft.HasTitle() || !draft.HasBody() {
		field := "title"
		if draft.HasTitle() {
			field = "body"
		}
		log.Debug().Str("field", field).Msg("Publish rejected: incomplete draft")
		return c.publishState(), &ValidationError{Op: "publish", Field: field, Message: field + " is required"}
	}

	cycle, ok := c.beginPublish()
	if !ok {
		log.Warn().Msg("Publish rejected: cycle already in flight")
		return StatePublishing, &PreconditionError{Op: "publish", Err: ErrPublishInFlight}
	}
	c.notify()

	logger := log.With().Str("cycle", cycle).Str("title", draft.Title).Logger()
	logger.Info().Msg("Publish cycle started")
	start := time.Now()

	pub, err := c.runPublish(ctx, cycle, draft)
	state := c.finishPublish(pub, err)
	c.notify()

	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Publish cycle failed")
		return state, err
	}
	logger.Info().
		Dur("duration", time.Since(start)).
		Int("quiz_length", len(pub.Quiz.Text)).
		Str("image", pub.Image.URL).
		Msg("Publish cycle complete")
	return state, nil
}

func (c *Controller) runPublish(ctx context.Context, cycle string, draft lesson.Draft) (*Publication, error) {
	prompt := c.opts.Prompt(draft.Body)
	text, err := call(ctx, c, StepQuiz, c.opts.CallTimeout, func(ctx context.Context) (string, error) {
		return c.clients.Quiz.Generate(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	image := lesson.ImageFor(draft.Title)

	rec := lesson.NewRecord(draft)
	_, err = call(ctx, c, StepPersist, c.opts.CallTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.clients.Store.Insert(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	return &Publication{
		CycleID:     cycle,
		Draft:       draft,
		Quiz:        lesson.Quiz{Text: text},
		Image:       image,
		PublishedAt: c.opts.Now(),
	}, nil
}

func (c *Controller) beginPublish() (string, bool) {
	c.pub.mu.Lock()
	defer c.pub.mu.Unlock()
	if c.pub.state == StatePublishing {
		return "", false
	}
	c.pub.state = StatePublishing
	c.pub.cycle = c.opts.NewCycleID()
	c.pub.publication = nil
	c.pub.err = ""
	return c.pub.cycle, true
}

func (c *Controller) finishPublish(pub *Publication, err error) State {
	c.pub.mu.Lock()
	defer c.pub.mu.Unlock()
	if err != nil {
		c.pub.state = StatePublishFailed
		c.pub.publication = nil
		c.pub.err = err.Error()
	} else {
		c.pub.state = StatePublished
		c.pub.publication = pub
	}
	return c.pub.state
}

// GenerateVideo resolves a video reference for the draft title. When no real
// generator is available the reference is simulated rather than failing.
// The publish axis is never touched.
func (c *Controller) GenerateVideo(ctx context.Context, draft lesson.Draft) (State, error) {
	if !draft.HasTitle() {
		log.Debug().Msg("Video rejected: missing title")
		return c.videoState(), &ValidationError{Op: "video", Field: "title", Message: "title is required"}
	}
	if !c.beginVideo(draft.Title) {
		log.Warn().Msg("Video rejected: generation already in flight")
		return StateGeneratingVideo, &PreconditionError{Op: "video", Err: ErrVideoInFlight}
	}
	c.notify()

	logger := log.With().Str("title", draft.Title).Logger()
	start := time.Now()

	ref, err := c.resolveVideo(ctx, draft.Title)
	state := c.finishVideo(ref, err)
	c.notify()

	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Video generation failed")
		return state, err
	}
	logger.Info().
		Str("url", ref.URL).
		Str("source", string(ref.Source)).
		Dur("duration", time.Since(start)).
		Msg("Video reference ready")
	return state, nil
}

func (c *Controller) resolveVideo(ctx context.Context, title string) (lesson.Video, error) {
	vc := c.clients.Video
	if vc == nil || !vc.Supported() {
		metrics.RecordStep(StepVideo, metrics.ResultSimulated, 0)
		return lesson.SimulatedVideo(title), nil
	}
	return call(ctx, c, StepVideo, c.opts.VideoTimeout, func(ctx context.Context) (lesson.Video, error) {
		v, err := vc.Resolve(ctx, title)
		if errors.Is(err, lesson.ErrVideoUnsupported) {
			log.Info().Err(err).Msg("Video backend unsupported, using simulated reference")
			return lesson.SimulatedVideo(title), nil
		}
		return v, err
	})
}

func (c *Controller) beginVideo(title string) bool {
	c.vid.mu.Lock()
	defer c.vid.mu.Unlock()
	if c.vid.state == StateGeneratingVideo {
		return false
	}
	c.vid.state = StateGeneratingVideo
	c.vid.title = title
	c.vid.ref = nil
	c.vid.err = ""
	return true
}

func (c *Controller) finishVideo(ref lesson.Video, err error) State {
	c.vid.mu.Lock()
	defer c.vid.mu.Unlock()
	if err != nil {
		c.vid.state = StateVideoFailed
		c.vid.err = err.Error()
	} else {
		c.vid.state = StateVideoReady
		c.vid.ref = &ref
	}
	return c.vid.state
}

// ExportDocument renders the current publication to a document. Title and
// body come from draft when set (the educator may have edited them since
// publishing) and from the publication otherwise; the quiz always comes from
// the publication. Without a successful publish in the current cycle it fails
// with a *PreconditionError and the exporter is not called. Export never
// changes workflow state.
func (c *Controller) ExportDocument(ctx context.Context, draft lesson.Draft) (lesson.DocumentHandle, error) {
	pub := c.currentPublication()
	if pub == nil {
		log.Debug().Msg("Export rejected: nothing published")
		return lesson.DocumentHandle{}, &PreconditionError{Op: "export", Err: ErrNothingPublished}
	}

	doc := lesson.Document{Title: pub.Draft.Title, Body: pub.Draft.Body, Quiz: pub.Quiz.Text}
	if draft.HasTitle() {
		doc.Title = draft.Title
	}
	if draft.HasBody() {
		doc.Body = draft.Body
	}

	if c.clients.Exporter == nil {
		return lesson.DocumentHandle{}, &ExportError{Title: doc.Title, Err: errors.New("no document exporter configured")}
	}

	start := time.Now()
	handle, err := c.clients.Exporter.Export(ctx, doc)
	if err != nil {
		metrics.RecordStep(StepExport, metrics.ResultError, time.Since(start))
		log.Error().Err(err).Str("cycle", pub.CycleID).Msg("Export failed")
		return lesson.DocumentHandle{}, &ExportError{Title: doc.Title, Err: err}
	}
	metrics.RecordStep(StepExport, metrics.ResultOK, time.Since(start))
	log.Info().Str("cycle", pub.CycleID).Str("document", handle.String()).Msg("Document exported")
	return handle, nil
}

// Snapshot returns a copy of both axes.
func (c *Controller) Snapshot() Snapshot {
	var s Snapshot

	c.pub.mu.Lock()
	s.Publish = c.pub.state
	s.PublishCycle = c.pub.cycle
	s.Publication = c.pub.publication
	s.PublishErr = c.pub.err
	c.pub.mu.Unlock()

	c.vid.mu.Lock()
	s.Video = c.vid.state
	s.VideoTitle = c.vid.title
	if c.vid.ref != nil {
		ref := *c.vid.ref
		s.VideoRef = &ref
	}
	s.VideoErr = c.vid.err
	c.vid.mu.Unlock()

	return s
}

// Subscribe registers l for a Snapshot after every transition. The returned
// func removes it.
func (c *Controller) Subscribe(l Listener) func() {
	c.lmu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = l
	c.lmu.Unlock()

	return func() {
		c.lmu.Lock()
		delete(c.listeners, id)
		c.lmu.Unlock()
	}
}

func (c *Controller) notify() {
	snap := c.Snapshot()

	c.lmu.Lock()
	ls := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.lmu.Unlock()

	for _, l := range ls {
		l(snap)
	}
}

func (c *Controller) publishState() State {
	c.pub.mu.Lock()
	defer c.pub.mu.Unlock()
	return c.pub.state
}

func (c *Controller) videoState() State {
	c.vid.mu.Lock()
	defer c.vid.mu.Unlock()
	return c.vid.state
}

func (c *Controller) currentPublication() *Publication {
	c.pub.mu.Lock()
	defer c.pub.mu.Unlock()
	if c.pub.state != StatePublished {
		return nil
	}
	return c.pub.publication
}

// call runs fn under its own deadline. The deadline is enforced even if fn
// ignores its context; a late result is dropped.
func call[T any](ctx context.Context, c *Controller, step string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		v, err := fn(callCtx)
		done <- outcome{v: v, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-callCtx.Done():
		out.err = callCtx.Err()
	}
	elapsed := time.Since(start)

	if out.err == nil {
		metrics.RecordStep(step, metrics.ResultOK, elapsed)
		return out.v, nil
	}

	var zero T
	if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		metrics.RecordStep(step, metrics.ResultTimeout, elapsed)
		return zero, &ServiceError{
			Service: step,
			Reason:  "timeout",
			Err:     &TimeoutError{Service: step, After: timeout},
		}
	}

	metrics.RecordStep(step, metrics.ResultError, elapsed)
	return zero, &ServiceError{Service: step, Reason: c.opts.Classify(out.err), Err: out.err}
}

func defaultClassify(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "unknown"
	}
}
