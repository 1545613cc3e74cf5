package workflow

import (
	"context"

	"github.com/fpang/edu-studio/internal/lesson"
)

// QuizClient asks a language model for a quiz.
type QuizClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PersistenceClient writes one lesson row to the content store.
type PersistenceClient interface {
	Insert(ctx context.Context, rec lesson.Record) error
}

// VideoClient resolves a video for a lesson title. Supported reports whether
// a real generator is configured at all; Resolve may still return
// lesson.ErrVideoUnsupported when the backend turns out not to offer it.
type VideoClient interface {
	Supported() bool
	Resolve(ctx context.Context, title string) (lesson.Video, error)
}

// DocumentExporter renders a lesson and its quiz into a single file.
type DocumentExporter interface {
	Export(ctx context.Context, doc lesson.Document) (lesson.DocumentHandle, error)
}

// Clients bundles the collaborators a Controller drives.
// Video may be nil, in which case every video request is simulated.
type Clients struct {
	Quiz     QuizClient
	Store    PersistenceClient
	Video    VideoClient
	Exporter DocumentExporter
}
