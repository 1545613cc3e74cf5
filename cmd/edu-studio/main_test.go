package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpang/edu-studio/internal/config"
	"github.com/fpang/edu-studio/internal/workflow"
)

func TestDraftFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cours.txt")
	if err := os.WriteFile(path, []byte("Les plantes captent la lumière."), 0o644); err != nil {
		t.Fatal(err)
	}

	f := draftFlags{title: "  Photosynthèse ", bodyFile: path}
	d, err := f.draft()
	if err != nil {
		t.Fatal(err)
	}
	if d.Title != "Photosynthèse" || d.Body != "Les plantes captent la lumière." {
		t.Errorf("draft = %+v", d)
	}

	f = draftFlags{title: "A", bodyFile: filepath.Join(t.TempDir(), "missing.txt")}
	if _, err := f.draft(); err == nil {
		t.Error("expected error for missing body file")
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(nil); got != 0 {
		t.Errorf("exitCode(nil) = %d", got)
	}
	reported := &reportedError{err: &workflow.PreconditionError{Op: "export", Err: workflow.ErrNothingPublished}}
	if got := exitCode(reported); got != 1 {
		t.Errorf("exitCode(reported) = %d", got)
	}
	if !errors.Is(reported, workflow.ErrNothingPublished) {
		t.Error("reportedError does not unwrap")
	}
}

func setCheckEnv(t *testing.T, apiKey string) {
	t.Helper()
	t.Setenv("EDU_LOG_LEVEL", "disabled")
	t.Setenv(config.EnvGoogleAPIKey, apiKey)
	t.Setenv(config.EnvGeminiAPIKey, "")
	t.Setenv(config.EnvStore, "sqlite")
	t.Setenv(config.EnvSSMPrefix, "")
	t.Setenv(config.EnvExportBucket, "")
}

func TestCheckMissingConfiguration(t *testing.T) {
	setCheckEnv(t, "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", "--skip-key"})
	err := rootCmd.ExecuteContext(context.Background())

	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *config.ConfigurationError", err)
	}
	if len(cfgErr.Missing) != 1 || cfgErr.Missing[0] != config.EnvGoogleAPIKey {
		t.Errorf("missing = %v", cfgErr.Missing)
	}
	if exitCode(err) == 0 {
		t.Error("expected non-zero exit code")
	}
}

func TestCheckConfigurationOnly(t *testing.T) {
	setCheckEnv(t, "test-key")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", "--skip-key"})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{"configuration complete", "store:", "sqlite"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "test-key") {
		t.Error("API key printed")
	}
}
