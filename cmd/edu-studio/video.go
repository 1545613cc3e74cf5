package main

import (
	"github.com/spf13/cobra"

	"github.com/fpang/edu-studio/internal/cli"
	"github.com/fpang/edu-studio/internal/workflow"
)

var videoDraft draftFlags

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Generate an educational video link for a lesson title",
	Long: `Generate an educational video for the lesson title with Veo when
EDU_VIDEO_MODEL is set. Without a video model, or when the model is not
available to the API key, a simulated video link is returned instead.`,
	Args: cobra.NoArgs,
	RunE: runVideo,
}

func init() {
	videoDraft.register(videoCmd, false)
}

func runVideo(cmd *cobra.Command, args []string) error {
	draft, err := videoDraft.draft()
	if err != nil {
		return err
	}

	s, err := startStudio(cmd, "video")
	if err != nil {
		return err
	}
	defer s.Close()

	render := cli.NewRenderer(cmd.OutOrStdout())
	unsubscribe := s.Controller.Subscribe(render.Progress)
	defer unsubscribe()

	return execute(cmd.Context(), workflow.NewDispatcher(s.Controller), render, workflow.GenerateVideoCommand{Draft: draft})
}
