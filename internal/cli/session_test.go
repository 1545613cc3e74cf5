package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/fpang/edu-studio/internal/export"
	"github.com/fpang/edu-studio/internal/workflow"
)

type studio struct {
	fs      afero.Fs
	store   *memStore
	session *Session
	out     *bytes.Buffer
}

func newStudio(t *testing.T, input string, quiz stubQuiz, dialog Dialog) *studio {
	t.Helper()
	fs := afero.NewMemMapFs()
	st := &memStore{}
	c := workflow.New(workflow.Clients{
		Quiz:     quiz,
		Store:    st,
		Exporter: export.NewPDFExporter(fs, "/out"),
	}, workflow.Options{})

	var out bytes.Buffer
	s := NewSession(strings.NewReader(input), NewRenderer(&out), workflow.NewDispatcher(c), dialog)
	return &studio{fs: fs, store: st, session: s, out: &out}
}

func (s *studio) run(t *testing.T) string {
	t.Helper()
	if err := s.session.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return s.out.String()
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSessionPublishExportVideo(t *testing.T) {
	input := strings.Join([]string{
		"title Photosynthesis",
		"body Plants convert light into chemical energy.",
		"publish",
		"wait",
		"export",
		"video",
		"wait",
		"open-video",
		"show",
		"quit",
		"publish",
	}, "\n") + "\n"

	s := newStudio(t, input, stubQuiz{text: "Q1. Which gas do plants absorb?"}, nil)
	out := s.run(t)

	assertContains(t, out,
		"⏳ Génération du quiz et de l'image...",
		"📚 Photosynthesis",
		"Q1. Which gas do plants absorb?",
		"✅ PDF enregistré : Cours_Photosynthesis.pdf",
		"✅ Vidéo générée (simulée) !",
		"https://www.youtube.com/results?search_query=Photosynthesis",
		"Publication : published",
		"Vidéo       : video_ready",
	)

	if got := s.store.count(); got != 1 {
		t.Errorf("records written = %d, want 1 (commands after quit must not run)", got)
	}
	if ok, _ := afero.Exists(s.fs, "/out/Cours_Photosynthesis.pdf"); !ok {
		t.Error("PDF not written")
	}
}

func TestSessionPromptsForMissingArguments(t *testing.T) {
	input := "title\nLe cycle de l'eau\nbody\nL'eau s'évapore.\nPuis elle condense.\n.\nshow\n"

	s := newStudio(t, input, stubQuiz{text: "quiz"}, nil)
	s.run(t)

	d := s.session.Draft()
	if d.Title != "Le cycle de l'eau" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Body != "L'eau s'évapore.\nPuis elle condense." {
		t.Errorf("body = %q", d.Body)
	}
}

func TestSessionReportsFailures(t *testing.T) {
	input := "publish\nwait\ntitle Volcans\nbody Magma.\npublish\nwait\nexport\nwait\nopen-video\nfrobnicate\n"

	s := newStudio(t, input, stubQuiz{err: errors.New("quota exceeded")}, nil)
	out := s.run(t)

	assertContains(t, out,
		"Veuillez saisir un titre et un contenu !",
		"Erreur : quota exceeded",
		"Publiez le cours avant d'exporter le PDF.",
		"Aucune vidéo générée.",
		"Commande inconnue : frobnicate",
	)
	if got := s.store.count(); got != 0 {
		t.Errorf("records written = %d, want 0", got)
	}
}

func TestSessionBodyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesson.txt")
	if err := os.WriteFile(path, []byte("Les volcans crachent de la lave."), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newStudio(t, "body-file "+path+"\nbody-file "+filepath.Dir(path)+"\nbody-file\n", stubQuiz{}, nil)
	out := s.run(t)

	if got := s.session.Draft().Body; got != "Les volcans crachent de la lave." {
		t.Errorf("body = %q", got)
	}
	assertContains(t, out, "Contenu chargé (32 caractères).", "path is a directory", "Usage : body-file <chemin>")
}

type fakeDialog struct {
	mu      sync.Mutex
	entry   string
	file    string
	err     error
	notices []string
	infos   []string
}

func (d *fakeDialog) Entry(prompt, text string) (string, error) { return d.entry, d.err }

func (d *fakeDialog) SelectFile(title string) (string, error) { return d.file, d.err }

func (d *fakeDialog) Notify(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notices = append(d.notices, text)
	return nil
}

func (d *fakeDialog) Info(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.infos = append(d.infos, text)
	return nil
}

func TestSessionDialogMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eau.txt")
	if err := os.WriteFile(path, []byte("L'eau circule."), 0o644); err != nil {
		t.Fatal(err)
	}
	dialog := &fakeDialog{entry: "Le cycle de l'eau", file: path}

	s := newStudio(t, "title\nbody-file\nvideo\nwait\nopen-video\n", stubQuiz{}, dialog)
	s.run(t)

	d := s.session.Draft()
	if d.Title != "Le cycle de l'eau" || d.Body != "L'eau circule." {
		t.Errorf("draft = %+v", d)
	}
	if len(dialog.notices) != 1 || dialog.notices[0] != "✅ Vidéo générée (simulée) !" {
		t.Errorf("notices = %q", dialog.notices)
	}
	if len(dialog.infos) != 1 || !strings.Contains(dialog.infos[0], "search_query=Le%20cycle%20de%20l%27eau") {
		t.Errorf("infos = %q", dialog.infos)
	}
}

func TestSessionDialogCanceledKeepsTitle(t *testing.T) {
	dialog := &fakeDialog{err: ErrCanceled}
	s := newStudio(t, "title Volcans\ntitle\n", stubQuiz{}, dialog)
	s.run(t)

	if got := s.session.Draft().Title; got != "Volcans" {
		t.Errorf("title = %q, want unchanged", got)
	}
}

func TestSessionStopsOnCanceledContext(t *testing.T) {
	s := newStudio(t, "title A\n", stubQuiz{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.session.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := s.session.Draft().Title; got != "" {
		t.Errorf("title = %q, want no command run", got)
	}
}
