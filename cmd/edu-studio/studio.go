package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/edu-studio/internal/cli"
	"github.com/fpang/edu-studio/internal/workflow"
)

var (
	studioDraft      draftFlags
	studioDialogFlag bool
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Interactive lesson studio",
	Long: `Open an interactive session: set the lesson title and body, then publish,
generate the video and export the PDF. Generations run in the background so
you can keep editing while Gemini works.

With --dialog, titles, body files and notifications use desktop dialogs.`,
	Args: cobra.NoArgs,
	RunE: runStudio,
}

func init() {
	studioDraft.register(studioCmd, true)
	studioCmd.Flags().BoolVar(&studioDialogFlag, "dialog", false, "Use desktop dialogs for input and notifications")
}

func runStudio(cmd *cobra.Command, args []string) error {
	draft, err := studioDraft.draft()
	if err != nil {
		return err
	}

	s, err := startStudio(cmd, "studio")
	if err != nil {
		return err
	}
	defer s.Close()

	render := cli.NewRenderer(cmd.OutOrStdout())
	render.Banner(s.Model, s.Exporter.Dir())

	var dialog cli.Dialog
	if studioDialogFlag {
		dialog = cli.ZenityDialog{Title: "EduStudio"}
	}

	session := cli.NewSession(os.Stdin, render, workflow.NewDispatcher(s.Controller), dialog)
	session.SetDraft(draft)
	return session.Run(cmd.Context())
}
