package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fpang/edu-studio/internal/boot"
	"github.com/fpang/edu-studio/internal/cli"
	"github.com/fpang/edu-studio/internal/lesson"
	"github.com/fpang/edu-studio/internal/logging"
)

// Persistent flags
var (
	envFileFlag string
)

// rootCmd is the main Cobra command for the edu-studio CLI.
var rootCmd = &cobra.Command{
	Use:   "edu-studio",
	Short: "Lesson studio - generate a quiz, an image, a video link and a PDF from a lesson",
	Long: `EduStudio turns a lesson title and body into a published course: a
multiple-choice quiz generated by Gemini, an illustrative image, a row in the
content store, an optional educational video link and a PDF export.

Configuration is read from the environment and from a .env file
(GOOGLE_API_KEY, SUPABASE_URL, SUPABASE_KEY, EDU_STORE, ...).

Examples:
  edu-studio studio                       # Interactive session
  edu-studio studio --dialog              # Interactive session with desktop dialogs
  edu-studio publish -t "Photosynthèse" --body-file cours.txt --export
  edu-studio video -t "Le cycle de l'eau"
  edu-studio generate -t "Volcans" -b "Un volcan est..." --export
  edu-studio check`,
	Version:       version(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Path to a .env file (default: ./.env if present)")
	rootCmd.AddCommand(studioCmd, publishCmd, videoCmd, generateCmd, checkCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// reportedError marks a failure the renderer has already shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// exitCode prints err unless it was already rendered and returns the
// process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(os.Stderr, cli.DescribeStartupError(err))
	}
	return 1
}

// startStudio loads the configuration, wires the studio and logs the
// startup summary.
func startStudio(cmd *cobra.Command, name string) (*boot.Studio, error) {
	initStart := time.Now()
	s, err := boot.Start(cmd.Context(), envFileFlag)
	if err != nil {
		return nil, err
	}
	boot.StartupLog(name, initStart, s).Version(version()).Log()
	return s, nil
}

// draftFlags are the lesson inputs shared by the one-shot commands.
type draftFlags struct {
	title    string
	body     string
	bodyFile string
}

func (f *draftFlags) register(cmd *cobra.Command, withBody bool) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Lesson title")
	if withBody {
		cmd.Flags().StringVarP(&f.body, "body", "b", "", "Lesson body")
		cmd.Flags().StringVar(&f.bodyFile, "body-file", "", "Read the lesson body from a file")
		cmd.MarkFlagsMutuallyExclusive("body", "body-file")
	}
}

// draft builds the lesson draft from the flags. A body file takes the
// place of --body.
func (f *draftFlags) draft() (lesson.Draft, error) {
	d := lesson.Draft{Title: strings.TrimSpace(f.title), Body: f.body}
	if f.bodyFile != "" {
		body, err := cli.ReadBodyFile(f.bodyFile)
		if err != nil {
			return lesson.Draft{}, err
		}
		d.Body = body
	}
	return d, nil
}
