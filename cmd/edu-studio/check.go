package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fpang/edu-studio/internal/boot"
	"github.com/fpang/edu-studio/internal/chat"
	"github.com/fpang/edu-studio/internal/cli"
)

var checkSkipKeyFlag bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and the Gemini API key",
	Long: `Check that every required setting is present (GOOGLE_API_KEY, and the
settings of the selected content store) and that Gemini accepts the API key.
Exits non-zero on the first problem.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkSkipKeyFlag, "skip-key", false, "Only check the configuration, do not call Gemini")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	ok := color.New(color.FgGreen).Sprint("✓")

	cfg, _, err := boot.LoadConfig(ctx, envFileFlag)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s configuration complete\n", ok)
	summary := cfg.Summary()
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if summary[k] != "" {
			fmt.Fprintf(out, "    %-13s %s\n", k+":", summary[k])
		}
	}

	if checkSkipKeyFlag {
		return nil
	}

	client, err := chat.NewGeminiClient(ctx, cfg.GoogleAPIKey)
	if err != nil {
		return err
	}
	model := chat.ModelOrDefault(cfg.Model)
	if err := cli.CheckGeminiKey(ctx, client, model); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Gemini API key accepted (%s)\n", ok, model)
	return nil
}
