package cli

import (
	"errors"
	"path/filepath"

	"github.com/fpang/edu-studio/internal/lesson"
	"github.com/fpang/edu-studio/internal/workflow"
)

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notice is a one-line message shown to the educator after a command
// completes, the terminal counterpart of a snack bar.
type Notice struct {
	Level Level
	Text  string
}

// NoticeFor builds the notice for a finished command. The video notice
// reads the reference from snap. Publish successes have no notice because
// the publication itself is rendered.
func NoticeFor(res workflow.Result, snap workflow.Snapshot) (Notice, bool) {
	if res.Err != nil {
		return errorNotice(res), true
	}

	switch res.Command {
	case "export":
		if res.Document == nil {
			return Notice{}, false
		}
		name := filepath.Base(res.Document.Path)
		if res.Document.URI != "" {
			name += " (" + res.Document.URI + ")"
		}
		return Notice{Level: LevelSuccess, Text: "✅ PDF enregistré : " + name}, true
	case "video":
		if snap.VideoRef != nil && snap.VideoRef.Source == lesson.VideoSimulated {
			return Notice{Level: LevelSuccess, Text: "✅ Vidéo générée (simulée) !"}, true
		}
		return Notice{Level: LevelSuccess, Text: "✅ Vidéo générée !"}, true
	}
	return Notice{}, false
}

func errorNotice(res workflow.Result) Notice {
	var valErr *workflow.ValidationError
	if errors.As(res.Err, &valErr) {
		if res.Command == "video" {
			return Notice{Level: LevelError, Text: "Veuillez saisir un titre pour la vidéo !"}
		}
		return Notice{Level: LevelError, Text: "Veuillez saisir un titre et un contenu !"}
	}

	switch {
	case errors.Is(res.Err, workflow.ErrNothingPublished):
		return Notice{Level: LevelError, Text: "Publiez le cours avant d'exporter le PDF."}
	case errors.Is(res.Err, workflow.ErrPublishInFlight):
		return Notice{Level: LevelInfo, Text: "Publication déjà en cours..."}
	case errors.Is(res.Err, workflow.ErrVideoInFlight):
		return Notice{Level: LevelInfo, Text: "Génération vidéo déjà en cours..."}
	}

	switch res.Command {
	case "export":
		return Notice{Level: LevelError, Text: "Erreur PDF : " + cause(res.Err)}
	case "video":
		return Notice{Level: LevelError, Text: "Erreur vidéo : " + cause(res.Err)}
	}
	return Notice{Level: LevelError, Text: "Erreur : " + cause(res.Err)}
}

// cause strips the workflow wrappers so the educator sees the service's
// own message.
func cause(err error) string {
	var svcErr *workflow.ServiceError
	if errors.As(err, &svcErr) && svcErr.Err != nil {
		return svcErr.Err.Error()
	}
	var expErr *workflow.ExportError
	if errors.As(err, &expErr) && expErr.Err != nil {
		return expErr.Err.Error()
	}
	return err.Error()
}
