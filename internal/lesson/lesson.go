// Package lesson holds the data model shared by the generation workflow,
// the external service clients and the presentation layer.
//
// Everything here is a plain value. The workflow controller receives a Draft
// snapshot at invocation time and derives the other values from it; nothing
// in this package performs I/O.
package lesson

import (
	"errors"
	"strings"
)

// Fixed tags written with every persisted lesson.
const (
	SubjectTag = "Multimédia"
	LevelTag   = "Gemini-3"
)

// ErrVideoUnsupported is returned by a video resolver that cannot generate
// videos at all (model not enabled, not listed for the key). It is distinct
// from a transient failure: callers fall back to a simulated reference.
var ErrVideoUnsupported = errors.New("video generation unsupported")

// Draft is the educator's input: a lesson title and its body text.
type Draft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// HasTitle reports whether the title holds any non-whitespace text.
func (d Draft) HasTitle() bool {
	return strings.TrimSpace(d.Title) != ""
}

// HasBody reports whether the body holds any non-whitespace text.
func (d Draft) HasBody() bool {
	return strings.TrimSpace(d.Body) != ""
}

// Quiz is the text produced by the quiz generation step.
type Quiz struct {
	Text string `json:"text"`
}

// Image is an illustrative image reference derived from the lesson title.
type Image struct {
	URL string `json:"url"`
}

// VideoSource records where a video reference came from.
type VideoSource string

const (
	// VideoSimulated marks a placeholder substituted when no real generator is available.
	VideoSimulated VideoSource = "simulated"
	// VideoResolved marks a reference returned by a real video generator.
	VideoResolved VideoSource = "resolved"
)

// Video is a link to an educational video for the lesson.
type Video struct {
	URL    string      `json:"url"`
	Source VideoSource `json:"source"`
}

// Record is the row written to the content store once per publish cycle.
type Record struct {
	Title      string `json:"title" dynamodbav:"title"`
	Body       string `json:"body" dynamodbav:"body"`
	SubjectTag string `json:"subject_tag" dynamodbav:"subjectTag"`
	LevelTag   string `json:"level_tag" dynamodbav:"levelTag"`
}

// NewRecord builds the persisted row for a draft with the fixed tags.
func NewRecord(d Draft) Record {
	return Record{
		Title:      d.Title,
		Body:       d.Body,
		SubjectTag: SubjectTag,
		LevelTag:   LevelTag,
	}
}

// Document is the in-memory content of an exported lesson document.
type Document struct {
	Title string
	Body  string
	Quiz  string
}

// DocumentHandle identifies an exported document.
type DocumentHandle struct {
	// Path is the local file the document was written to.
	Path string `json:"path"`
	// URI is set when the document was also uploaded (e.g. s3://bucket/key).
	URI string `json:"uri,omitempty"`
}

// String returns the most useful identifier for display.
func (h DocumentHandle) String() string {
	if h.URI != "" {
		return h.URI
	}
	return h.Path
}
