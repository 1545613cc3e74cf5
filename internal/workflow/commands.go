package workflow

import (
	"context"
	"sync"

	"github.com/fpang/edu-studio/internal/lesson"
)

// Command is a typed user action emitted by the presentation layer.
type Command interface {
	Name() string
	execute(ctx context.Context, c *Controller) Result
}

// PublishCommand starts a publish cycle.
type PublishCommand struct {
	Draft lesson.Draft
}

// GenerateVideoCommand requests a video reference.
type GenerateVideoCommand struct {
	Draft lesson.Draft
}

// ExportCommand exports the current publication. Draft fields, when set,
// override the published title and body.
type ExportCommand struct {
	Draft lesson.Draft
}

func (PublishCommand) Name() string       { return "publish" }
func (GenerateVideoCommand) Name() string { return "video" }
func (ExportCommand) Name() string        { return "export" }

func (cmd PublishCommand) execute(ctx context.Context, c *Controller) Result {
	state, err := c.Publish(ctx, cmd.Draft)
	return Result{Command: cmd.Name(), State: state, Err: err}
}

func (cmd GenerateVideoCommand) execute(ctx context.Context, c *Controller) Result {
	state, err := c.GenerateVideo(ctx, cmd.Draft)
	return Result{Command: cmd.Name(), State: state, Err: err}
}

func (cmd ExportCommand) execute(ctx context.Context, c *Controller) Result {
	handle, err := c.ExportDocument(ctx, cmd.Draft)
	r := Result{Command: cmd.Name(), Err: err}
	if err == nil {
		r.Document = &handle
	}
	return r
}

// Result is the outcome of one dispatched command.
type Result struct {
	Command  string
	State    State
	Document *lesson.DocumentHandle
	Err      error
}

// Dispatcher runs commands against a Controller without blocking the caller.
type Dispatcher struct {
	c  *Controller
	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher for c.
func NewDispatcher(c *Controller) *Dispatcher {
	return &Dispatcher{c: c}
}

// Controller returns the controller commands are dispatched to.
func (d *Dispatcher) Controller() *Controller {
	return d.c
}

// Dispatch runs cmd on its own goroutine. The returned channel receives
// exactly one Result and is then closed.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) <-chan Result {
	ch := make(chan Result, 1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(ch)
		ch <- cmd.execute(ctx, d.c)
	}()
	return ch
}

// Execute runs cmd synchronously.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) Result {
	return cmd.execute(ctx, d.c)
}

// Wait blocks until every dispatched command has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
