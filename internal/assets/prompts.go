// Package assets provides the prompt templates sent to the generation models.
//
// Templates are stored as text files under prompts/ and embedded at compile
// time so wording changes never touch Go code.
package assets

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

// QuizQuestions is the fixed number of multiple-choice questions requested.
const QuizQuestions = 3

//go:embed prompts/quiz.txt
var quizTemplate string

//go:embed prompts/video.txt
var videoTemplate string

// Pre-parsed templates. template.Must panics on malformed templates,
// catching errors at program startup rather than at call time.
var (
	quizPromptTmpl  = template.Must(template.New("quiz").Parse(quizTemplate))
	videoPromptTmpl = template.Must(template.New("video").Parse(videoTemplate))
)

// QuizPromptData holds the dynamic data injected into the quiz template.
type QuizPromptData struct {
	Questions int
	Body      string
}

// VideoPromptData holds the dynamic data injected into the video template.
type VideoPromptData struct {
	Title string
}

// RenderQuizPrompt renders the instruction asking for a multiple-choice quiz
// about the lesson body.
func RenderQuizPrompt(body string) string {
	return render(quizPromptTmpl, QuizPromptData{Questions: QuizQuestions, Body: body})
}

// RenderVideoPrompt renders the instruction asking for an educational video
// about the lesson title.
func RenderVideoPrompt(title string) string {
	return render(videoPromptTmpl, VideoPromptData{Title: title})
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	// Execution errors are not expected with these templates; whatever was
	// rendered is returned.
	_ = tmpl.Execute(&buf, data)
	return strings.TrimSpace(buf.String())
}
