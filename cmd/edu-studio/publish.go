package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/fpang/edu-studio/internal/cli"
	"github.com/fpang/edu-studio/internal/workflow"
)

var (
	publishDraft      draftFlags
	publishExportFlag bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Generate the quiz and image for a lesson and save it",
	Args:  cobra.NoArgs,
	RunE:  runPublish,
}

func init() {
	publishDraft.register(publishCmd, true)
	publishCmd.Flags().BoolVar(&publishExportFlag, "export", false, "Export the published lesson as PDF")
}

func runPublish(cmd *cobra.Command, args []string) error {
	draft, err := publishDraft.draft()
	if err != nil {
		return err
	}

	s, err := startStudio(cmd, "publish")
	if err != nil {
		return err
	}
	defer s.Close()

	render := cli.NewRenderer(cmd.OutOrStdout())
	unsubscribe := s.Controller.Subscribe(render.Progress)
	defer unsubscribe()

	d := workflow.NewDispatcher(s.Controller)
	if err := execute(cmd.Context(), d, render, workflow.PublishCommand{Draft: draft}); err != nil {
		return err
	}
	if publishExportFlag {
		return execute(cmd.Context(), d, render, workflow.ExportCommand{})
	}
	return nil
}

// execute runs cmd synchronously and renders its result.
func execute(ctx context.Context, d *workflow.Dispatcher, render *cli.Renderer, cmd workflow.Command) error {
	start := time.Now()
	res := d.Execute(ctx, cmd)
	render.Result(res, d.Controller().Snapshot(), time.Since(start))
	if res.Err != nil {
		return &reportedError{err: res.Err}
	}
	return nil
}
