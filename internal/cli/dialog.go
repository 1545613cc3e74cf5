package cli

import (
	"errors"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// ErrCanceled is returned when the educator dismisses a dialog.
var ErrCanceled = errors.New("dialog canceled")

// Dialog is the desktop front-end used by the session in --dialog mode.
type Dialog interface {
	// Entry asks for one line of text, pre-filled with text.
	Entry(prompt, text string) (string, error)
	// SelectFile asks for a text file to read the lesson body from.
	SelectFile(title string) (string, error)
	// Notify shows a transient desktop notification.
	Notify(text string) error
	// Info shows a message box and waits for it to be dismissed.
	Info(text string) error
}

// ZenityDialog shows native dialogs through zenity.
type ZenityDialog struct {
	Title string
}

var _ Dialog = ZenityDialog{}

func (d ZenityDialog) Entry(prompt, text string) (string, error) {
	s, err := zenity.Entry(prompt, zenity.Title(d.Title), zenity.EntryText(text))
	return s, canceled(err)
}

func (d ZenityDialog) SelectFile(title string) (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title(title),
		zenity.FileFilters{
			{Name: "Text files", Patterns: []string{"*.txt", "*.md"}},
		},
	)
	return path, canceled(err)
}

func (d ZenityDialog) Notify(text string) error {
	return canceled(zenity.Notify(text, zenity.Title(d.Title)))
}

func (d ZenityDialog) Info(text string) error {
	return canceled(zenity.Info(text, zenity.Title(d.Title)))
}

func canceled(err error) error {
	if errors.Is(err, zenity.ErrCanceled) {
		return ErrCanceled
	}
	if err != nil {
		log.Debug().Err(err).Msg("Dialog failed")
	}
	return err
}
