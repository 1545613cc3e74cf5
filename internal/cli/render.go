package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/fpang/edu-studio/internal/lesson"
	"github.com/fpang/edu-studio/internal/workflow"
)

const rule = "--------------------------------------------"

// Renderer prints workflow snapshots, publications and notices. It is safe
// for concurrent use: dispatched commands report from their own goroutines.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer

	lastPublish workflow.State
	lastVideo   workflow.State

	success *color.Color
	failure *color.Color
	info    *color.Color
	heading *color.Color
	faint   *color.Color
}

// NewRenderer creates a Renderer writing to out. Colors follow
// color.NoColor, which fatih/color disables when out is not a terminal.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:         out,
		lastPublish: workflow.StateIdle,
		lastVideo:   workflow.StateIdle,
		success:     color.New(color.FgGreen),
		failure:     color.New(color.FgRed),
		info:        color.New(color.FgYellow),
		heading:     color.New(color.Bold),
		faint:       color.New(color.FgHiBlack),
	}
}

// Banner prints the session header.
func (r *Renderer) Banner(model, exportDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "============================================")
	r.heading.Fprintln(r.out, "EduStudio : Studio Multimédia")
	fmt.Fprintln(r.out, "============================================")
	fmt.Fprintf(r.out, "Model: %s\n", model)
	fmt.Fprintf(r.out, "Export directory: %s\n", exportDir)
	fmt.Fprintln(r.out, rule)
}

// Progress is a workflow.Listener that announces when a step starts.
func (r *Renderer) Progress(snap workflow.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.Publish != r.lastPublish && snap.Publish == workflow.StatePublishing {
		r.faint.Fprintln(r.out, "⏳ Génération du quiz et de l'image...")
	}
	if snap.Video != r.lastVideo && snap.Video == workflow.StateGeneratingVideo {
		r.faint.Fprintf(r.out, "⏳ Génération de la vidéo : %s...\n", snap.VideoTitle)
	}
	r.lastPublish, r.lastVideo = snap.Publish, snap.Video
}

// Result prints the outcome of a finished command: its notice, plus the
// publication or the video link on success.
func (r *Renderer) Result(res workflow.Result, snap workflow.Snapshot, elapsed time.Duration) {
	if res.Err == nil {
		switch res.Command {
		case "publish":
			if snap.Publication != nil {
				r.Publication(snap.Publication, elapsed)
			}
		case "video":
			if snap.VideoRef != nil {
				r.Video(*snap.VideoRef)
			}
		}
	}
	if n, ok := NoticeFor(res, snap); ok {
		r.Notice(n)
	}
}

// Notice prints n colored by its level.
func (r *Renderer) Notice(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch n.Level {
	case LevelSuccess:
		r.success.Fprintln(r.out, n.Text)
	case LevelError:
		r.failure.Fprintln(r.out, n.Text)
	default:
		r.info.Fprintln(r.out, n.Text)
	}
}

// Publication prints a published lesson: title, image link and quiz.
func (r *Renderer) Publication(pub *workflow.Publication, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, rule)
	r.heading.Fprintf(r.out, "📚 %s\n", pub.Draft.Title)
	fmt.Fprintf(r.out, "Image : %s\n", pub.Image.URL)
	fmt.Fprintln(r.out)
	r.heading.Fprintln(r.out, "✍️ QUIZ GÉNÉRÉ :")
	fmt.Fprintln(r.out, pub.Quiz.Text)
	if elapsed > 0 {
		r.faint.Fprintf(r.out, "(%s)\n", FormatDurationShort(elapsed))
	}
	fmt.Fprintln(r.out, rule)
}

// Video prints the link to the lesson video.
func (r *Renderer) Video(ref lesson.Video) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.heading.Fprintln(r.out, "Vidéo éducative :")
	fmt.Fprintln(r.out, ref.URL)
	if ref.Source == lesson.VideoSimulated {
		r.faint.Fprintln(r.out, "Pour l'exemple, ouvrez une recherche de vidéos sur le sujet.")
	}
}

// Status prints the draft being edited and both workflow axes.
func (r *Renderer) Status(draft lesson.Draft, snap workflow.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Titre   : %s\n", orNone(draft.Title))
	fmt.Fprintf(r.out, "Contenu : %s\n", orNone(preview(draft.Body, 60)))
	fmt.Fprintf(r.out, "Publication : %s\n", r.state(snap.Publish))
	if snap.PublishErr != "" {
		r.failure.Fprintf(r.out, "  %s\n", snap.PublishErr)
	}
	if snap.Publication != nil {
		fmt.Fprintf(r.out, "  publié : %s (%s)\n", snap.Publication.Draft.Title, snap.Publication.PublishedAt.Format(time.TimeOnly))
	}
	fmt.Fprintf(r.out, "Vidéo       : %s\n", r.state(snap.Video))
	if snap.VideoErr != "" {
		r.failure.Fprintf(r.out, "  %s\n", snap.VideoErr)
	}
	if snap.VideoRef != nil {
		fmt.Fprintf(r.out, "  %s\n", snap.VideoRef.URL)
	}
	fmt.Fprintln(r.out, rule)
}

// Write writes p as is, so prompts can share the renderer's output.
func (r *Renderer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.Write(p)
}

// Println prints a plain line.
func (r *Renderer) Println(a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, a...)
}

func (r *Renderer) state(s workflow.State) string {
	switch s {
	case workflow.StatePublished, workflow.StateVideoReady:
		return r.success.Sprint(s)
	case workflow.StatePublishFailed, workflow.StateVideoFailed:
		return r.failure.Sprint(s)
	case workflow.StatePublishing, workflow.StateGeneratingVideo:
		return r.info.Sprint(s)
	}
	return string(s)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(vide)"
	}
	return s
}

// preview returns the first line of s cut to n runes.
func preview(s string, n int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " …"
	}
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "…"
	}
	return s
}
