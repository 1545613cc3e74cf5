package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/edu-studio/internal/cli"
	"github.com/fpang/edu-studio/internal/workflow"
)

var (
	generateDraft      draftFlags
	generateExportFlag bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Publish a lesson and generate its video concurrently",
	Long: `Run the publish cycle (quiz, image, save) and the video generation at the
same time, then export the PDF when --export is set and the publish
succeeded. A failed video does not prevent the export.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateDraft.register(generateCmd, true)
	generateCmd.Flags().BoolVar(&generateExportFlag, "export", false, "Export the published lesson as PDF")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	draft, err := generateDraft.draft()
	if err != nil {
		return err
	}

	s, err := startStudio(cmd, "generate")
	if err != nil {
		return err
	}
	defer s.Close()

	render := cli.NewRenderer(cmd.OutOrStdout())
	unsubscribe := s.Controller.Subscribe(render.Progress)
	defer unsubscribe()

	ctx := cmd.Context()
	d := workflow.NewDispatcher(s.Controller)

	// No shared context: a failure on one axis must not cancel the other.
	var g errgroup.Group
	var publishErr, videoErr error
	g.Go(func() error {
		publishErr = execute(ctx, d, render, workflow.PublishCommand{Draft: draft})
		return publishErr
	})
	g.Go(func() error {
		videoErr = execute(ctx, d, render, workflow.GenerateVideoCommand{Draft: draft})
		return videoErr
	})
	_ = g.Wait()

	log.Debug().AnErr("publish", publishErr).AnErr("video", videoErr).Msg("Generation finished")

	if publishErr != nil {
		return publishErr
	}
	if generateExportFlag {
		if err := execute(ctx, d, render, workflow.ExportCommand{}); err != nil {
			return err
		}
	}
	return videoErr
}
