package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/edu-studio/internal/lesson"
	"github.com/fpang/edu-studio/internal/workflow"
)

const sessionHelp = `Commandes :
  title [texte]       définir le titre de la leçon
  body [texte]        définir le contenu (sans texte : saisie multi-ligne)
  body-file [chemin]  lire le contenu depuis un fichier
  publish             générer le quiz et l'image, puis enregistrer le cours
  video               générer la vidéo éducative
  export              exporter le cours et le quiz en PDF
  show                afficher le brouillon et l'état
  open-video          afficher le lien de la vidéo
  wait                attendre la fin des générations en cours
  help                afficher cette aide
  quit                quitter`

// Session is the interactive studio: it edits a draft, dispatches commands
// to the workflow without blocking input, and renders their results.
type Session struct {
	in     *bufio.Reader
	render *Renderer
	disp   *workflow.Dispatcher
	dialog Dialog

	mu    sync.Mutex
	draft lesson.Draft

	reporters sync.WaitGroup
}

// NewSession creates a session reading commands from in. dialog may be nil,
// in which case every input comes from in.
func NewSession(in io.Reader, render *Renderer, disp *workflow.Dispatcher, dialog Dialog) *Session {
	return &Session{
		in:     bufio.NewReader(in),
		render: render,
		disp:   disp,
		dialog: dialog,
	}
}

// SetDraft replaces the draft being edited.
func (s *Session) SetDraft(d lesson.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// Draft returns a copy of the draft being edited.
func (s *Session) Draft() lesson.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Run reads commands until quit, end of input or ctx is done, then waits
// for every dispatched command to report.
func (s *Session) Run(ctx context.Context) error {
	unsubscribe := s.disp.Controller().Subscribe(s.render.Progress)
	defer unsubscribe()
	defer s.reporters.Wait()

	s.render.Println("Tapez 'help' pour la liste des commandes.")
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.render, "> ")

		line, err := s.in.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			if quit := s.Handle(ctx, line); quit {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read command: %w", err)
		}
	}
}

// Handle runs one command line. It reports whether the session should end.
func (s *Session) Handle(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	log.Debug().Str("command", name).Msg("Session command")

	switch strings.ToLower(name) {
	case "help", "?":
		s.render.Println(sessionHelp)
	case "title":
		s.setTitle(arg)
	case "body":
		s.setBody(arg)
	case "body-file":
		s.loadBody(arg)
	case "publish":
		s.dispatch(ctx, workflow.PublishCommand{Draft: s.Draft()})
	case "video":
		s.dispatch(ctx, workflow.GenerateVideoCommand{Draft: s.Draft()})
	case "export":
		s.dispatch(ctx, workflow.ExportCommand{Draft: s.Draft()})
	case "show":
		s.render.Status(s.Draft(), s.disp.Controller().Snapshot())
	case "open-video":
		s.openVideo()
	case "wait":
		s.Wait()
	case "quit", "exit":
		return true
	default:
		s.render.Notice(Notice{Level: LevelInfo, Text: fmt.Sprintf("Commande inconnue : %s (tapez 'help')", name)})
	}
	return false
}

// Wait blocks until every dispatched command has been rendered.
func (s *Session) Wait() {
	s.reporters.Wait()
}

// dispatch runs cmd in the background and renders its result when it
// arrives.
func (s *Session) dispatch(ctx context.Context, cmd workflow.Command) {
	start := time.Now()
	results := s.disp.Dispatch(ctx, cmd)

	s.reporters.Add(1)
	go func() {
		defer s.reporters.Done()
		res := <-results
		snap := s.disp.Controller().Snapshot()
		s.render.Result(res, snap, time.Since(start))

		if s.dialog == nil {
			return
		}
		if n, ok := NoticeFor(res, snap); ok {
			if err := s.dialog.Notify(n.Text); err != nil && !errors.Is(err, ErrCanceled) {
				log.Warn().Err(err).Msg("Failed to show notification")
			}
		}
	}()
}

func (s *Session) setTitle(arg string) {
	title := arg
	if title == "" {
		current := s.Draft().Title
		if s.dialog != nil {
			var err error
			if title, err = s.dialog.Entry("Titre de la leçon", current); err != nil {
				return
			}
		} else {
			title = PromptLine(s.in, s.render, "Titre de la leçon", current)
		}
	}

	s.mu.Lock()
	s.draft.Title = strings.TrimSpace(title)
	s.mu.Unlock()
}

func (s *Session) setBody(arg string) {
	body := arg
	if body == "" {
		body = PromptBody(s.in, s.render)
	}

	s.mu.Lock()
	s.draft.Body = body
	s.mu.Unlock()
}

func (s *Session) loadBody(path string) {
	if path == "" {
		if s.dialog == nil {
			s.render.Notice(Notice{Level: LevelInfo, Text: "Usage : body-file <chemin>"})
			return
		}
		var err error
		if path, err = s.dialog.SelectFile("Contenu de la leçon"); err != nil {
			return
		}
	}

	body, err := ReadBodyFile(path)
	if err != nil {
		s.render.Notice(Notice{Level: LevelError, Text: "Erreur : " + err.Error()})
		return
	}

	s.mu.Lock()
	s.draft.Body = body
	s.mu.Unlock()
	s.render.Println(fmt.Sprintf("Contenu chargé (%d caractères).", len([]rune(body))))
}

func (s *Session) openVideo() {
	snap := s.disp.Controller().Snapshot()
	if snap.VideoRef == nil {
		s.render.Notice(Notice{Level: LevelInfo, Text: "Aucune vidéo générée."})
		return
	}

	s.render.Video(*snap.VideoRef)
	if s.dialog != nil {
		if err := s.dialog.Info("Vidéo éducative :\n" + snap.VideoRef.URL); err != nil && !errors.Is(err, ErrCanceled) {
			log.Warn().Err(err).Msg("Failed to show video dialog")
		}
	}
}
