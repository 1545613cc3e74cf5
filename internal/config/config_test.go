package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/fpang/edu-studio/internal/store"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(mapLookup(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store != store.BackendSupabase {
		t.Errorf("store = %q, want supabase", cfg.Store)
	}
	if cfg.CallTimeout != 60*time.Second {
		t.Errorf("call timeout = %s", cfg.CallTimeout)
	}
	if cfg.VideoTimeout != 5*time.Minute {
		t.Errorf("video timeout = %s", cfg.VideoTimeout)
	}
	if cfg.ExportDir != "." {
		t.Errorf("export dir = %q", cfg.ExportDir)
	}
	if cfg.VideoEnabled() {
		t.Error("video enabled without a model")
	}
}

func TestFromLookupValues(t *testing.T) {
	cfg, err := FromLookup(mapLookup(map[string]string{
		EnvGeminiAPIKey: "gemini-key",
		EnvStore:        "SQLite",
		EnvSQLitePath:   "/tmp/edu.db",
		EnvCallTimeout:  "15s",
		EnvVideoTimeout: "2m",
		EnvVideoModel:   "veo-3.0-generate-001",
		EnvSSMPrefix:    "/edu-studio/prod/",
		EnvMetrics:      "EMF",
		EnvExportDir:    "  /srv/exports ",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GoogleAPIKey != "gemini-key" {
		t.Errorf("GEMINI_API_KEY fallback not applied: %q", cfg.GoogleAPIKey)
	}
	if cfg.Store != store.BackendSQLite || cfg.SQLitePath != "/tmp/edu.db" {
		t.Errorf("store = %q at %q", cfg.Store, cfg.SQLitePath)
	}
	if cfg.CallTimeout != 15*time.Second || cfg.VideoTimeout != 2*time.Minute {
		t.Errorf("timeouts = %s, %s", cfg.CallTimeout, cfg.VideoTimeout)
	}
	if cfg.SSMPrefix != "/edu-studio/prod" {
		t.Errorf("ssm prefix = %q", cfg.SSMPrefix)
	}
	if !cfg.EMFMetrics() || !cfg.VideoEnabled() {
		t.Errorf("emf = %v, video = %v", cfg.EMFMetrics(), cfg.VideoEnabled())
	}
	if cfg.ExportDir != "/srv/exports" {
		t.Errorf("export dir = %q", cfg.ExportDir)
	}
}

func TestFromLookupGoogleKeyWins(t *testing.T) {
	cfg, err := FromLookup(mapLookup(map[string]string{
		EnvGoogleAPIKey: "google",
		EnvGeminiAPIKey: "gemini",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GoogleAPIKey != "google" {
		t.Errorf("key = %q, want GOOGLE_API_KEY value", cfg.GoogleAPIKey)
	}
}

func TestFromLookupInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown store":     {EnvStore: "mongo"},
		"bad duration":      {EnvCallTimeout: "soon"},
		"negative duration": {EnvVideoTimeout: "-1s"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := FromLookup(mapLookup(env)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestValidateListsEveryMissingSecret(t *testing.T) {
	cfg, err := FromLookup(mapLookup(nil))
	if err != nil {
		t.Fatal(err)
	}

	err = cfg.Validate()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
	want := []string{EnvGoogleAPIKey, EnvSupabaseURL, EnvSupabaseKey}
	if !reflect.DeepEqual(cfgErr.Missing, want) {
		t.Errorf("missing = %v, want %v", cfgErr.Missing, want)
	}
	if cfgErr.Error() != "missing configuration: GOOGLE_API_KEY, SUPABASE_URL, SUPABASE_KEY" {
		t.Errorf("message = %q", cfgErr.Error())
	}
}

func TestValidatePerBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    []string
	}{
		{"postgres", []string{EnvDatabaseURL}},
		{"sqlite", nil},
		{"dynamodb", []string{EnvDynamoTable}},
		{"dataapi", []string{EnvDataAPICluster, EnvDataAPISecret, EnvDataAPIDatabase}},
	}
	for _, tt := range tests {
		cfg, err := FromLookup(mapLookup(map[string]string{
			EnvGoogleAPIKey: "k",
			EnvStore:        tt.backend,
		}))
		if err != nil {
			t.Fatal(err)
		}
		if got := cfg.Missing(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: missing = %v, want %v", tt.backend, got, tt.want)
		}
	}
}

func TestValidateComplete(t *testing.T) {
	cfg, err := FromLookup(mapLookup(map[string]string{
		EnvGoogleAPIKey: "k",
		EnvSupabaseURL:  "https://abc.supabase.co",
		EnvSupabaseKey:  "anon",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "GOOGLE_API_KEY=from-file\nSUPABASE_URL=https://file.supabase.co\nSUPABASE_KEY=file-key\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// Existing variables win over the file.
	t.Setenv(EnvSupabaseKey, "env-key")
	// Register the others with t.Setenv so they are restored afterwards.
	t.Setenv(EnvGoogleAPIKey, "")
	os.Unsetenv(EnvGoogleAPIKey)
	t.Setenv(EnvSupabaseURL, "")
	os.Unsetenv(EnvSupabaseURL)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GoogleAPIKey != "from-file" {
		t.Errorf("key = %q", cfg.GoogleAPIKey)
	}
	if cfg.SupabaseKey != "env-key" {
		t.Errorf("supabase key = %q, want the environment value", cfg.SupabaseKey)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

type fakeSSM struct {
	params map[string]string
	err    error
	asked  []string
}

func (f *fakeSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	name := aws.ToString(in.Name)
	f.asked = append(f.asked, name)
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.params[name]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{Message: aws.String("not found")}
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Name: in.Name, Value: aws.String(v)}}, nil
}

func TestFillFromSSM(t *testing.T) {
	cfg, err := FromLookup(mapLookup(map[string]string{
		EnvSupabaseURL: "https://abc.supabase.co",
		EnvSSMPrefix:   "/edu-studio/prod",
	}))
	if err != nil {
		t.Fatal(err)
	}
	fake := &fakeSSM{params: map[string]string{
		"/edu-studio/prod/GOOGLE_API_KEY": "ssm-google",
	}}

	if err := cfg.FillFromSSM(context.Background(), fake); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GoogleAPIKey != "ssm-google" {
		t.Errorf("key = %q", cfg.GoogleAPIKey)
	}
	want := []string{"/edu-studio/prod/GOOGLE_API_KEY", "/edu-studio/prod/SUPABASE_KEY"}
	if !reflect.DeepEqual(fake.asked, want) {
		t.Errorf("asked = %v, want %v (set values must not be fetched)", fake.asked, want)
	}
	if got := cfg.Missing(); !reflect.DeepEqual(got, []string{EnvSupabaseKey}) {
		t.Errorf("missing = %v", got)
	}
}

func TestFillFromSSMError(t *testing.T) {
	cfg, _ := FromLookup(mapLookup(map[string]string{EnvSSMPrefix: "/p"}))
	cause := errors.New("AccessDeniedException")

	err := cfg.FillFromSSM(context.Background(), &fakeSSM{err: cause})
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
}

func TestFillFromSSMWithoutPrefix(t *testing.T) {
	cfg, _ := FromLookup(mapLookup(nil))
	fake := &fakeSSM{}
	if err := cfg.FillFromSSM(context.Background(), fake); err != nil {
		t.Fatal(err)
	}
	if len(fake.asked) != 0 {
		t.Errorf("SSM called without a prefix: %v", fake.asked)
	}
}
