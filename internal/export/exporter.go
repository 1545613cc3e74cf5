// Package export renders a published lesson and its quiz into a PDF file.
//
// Rendering happens in memory; the file only appears once the document is
// complete, so a failed export never leaves a partial file behind. An
// optional Uploader copies the finished document elsewhere (S3).
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/fpang/edu-studio/internal/lesson"
)

// Uploader copies a finished document to remote storage and returns its URI.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// PDFExporter writes lesson documents into a directory.
type PDFExporter struct {
	fs       afero.Fs
	dir      string
	uploader Uploader
	render   func(lesson.Document) ([]byte, error)
}

// Option configures a PDFExporter.
type Option func(*PDFExporter)

// WithUploader also uploads every exported document.
func WithUploader(u Uploader) Option {
	return func(e *PDFExporter) {
		e.uploader = u
	}
}

// NewPDFExporter creates an exporter writing into dir on fs. An empty dir
// means the working directory.
func NewPDFExporter(fs afero.Fs, dir string, opts ...Option) *PDFExporter {
	if dir == "" {
		dir = "."
	}
	e := &PDFExporter{fs: fs, dir: dir, render: Render}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the output directory.
func (e *PDFExporter) Dir() string {
	return e.dir
}

// Export renders doc and writes it as Cours_<title>.pdf, replacing any
// previous export of the same title. When an uploader is configured and the
// upload fails, the local file is kept and the error is returned.
func (e *PDFExporter) Export(ctx context.Context, doc lesson.Document) (lesson.DocumentHandle, error) {
	if err := ctx.Err(); err != nil {
		return lesson.DocumentHandle{}, err
	}

	start := time.Now()
	name := FileName(doc.Title)
	data, err := e.render(doc)
	if err != nil {
		return lesson.DocumentHandle{}, err
	}

	path := filepath.Join(e.dir, name)
	if err := WriteFileAtomic(e.fs, path, data); err != nil {
		return lesson.DocumentHandle{}, err
	}
	handle := lesson.DocumentHandle{Path: path}

	log.Debug().
		Str("path", path).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("PDF written")

	if e.uploader != nil {
		uri, err := e.uploader.Upload(ctx, name, data)
		if err != nil {
			return handle, fmt.Errorf("upload %s: %w", name, err)
		}
		handle.URI = uri
	}
	return handle, nil
}
