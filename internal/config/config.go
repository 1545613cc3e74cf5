// Package config loads the studio configuration from the environment, an
// optional .env file and, for missing secrets, SSM Parameter Store.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fpang/edu-studio/internal/store"
)

// Environment variable names.
const (
	EnvGoogleAPIKey    = "GOOGLE_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvSupabaseURL     = "SUPABASE_URL"
	EnvSupabaseKey     = "SUPABASE_KEY"
	EnvStore           = "EDU_STORE"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvSQLitePath      = "EDU_SQLITE_PATH"
	EnvDynamoTable     = "EDU_DYNAMO_TABLE"
	EnvDataAPICluster  = "EDU_DATAAPI_CLUSTER_ARN"
	EnvDataAPISecret   = "EDU_DATAAPI_SECRET_ARN"
	EnvDataAPIDatabase = "EDU_DATAAPI_DATABASE"
	EnvModel           = "GEMINI_MODEL"
	EnvVideoModel      = "EDU_VIDEO_MODEL"
	EnvCallTimeout     = "EDU_CALL_TIMEOUT"
	EnvVideoTimeout    = "EDU_VIDEO_TIMEOUT"
	EnvExportDir       = "EDU_EXPORT_DIR"
	EnvExportBucket    = "EDU_EXPORT_BUCKET"
	EnvExportPrefix    = "EDU_EXPORT_PREFIX"
	EnvSSMPrefix       = "EDU_SSM_PREFIX"
	EnvMetrics         = "EDU_METRICS"
)

// Defaults.
const (
	DefaultCallTimeout  = 60 * time.Second
	DefaultVideoTimeout = 5 * time.Minute
	DefaultExportDir    = "."
)

// Config holds everything the studio needs to build its clients.
type Config struct {
	GoogleAPIKey string
	SupabaseURL  string
	SupabaseKey  string

	Store       store.Backend
	DatabaseURL string
	SQLitePath  string
	DynamoTable string

	DataAPIClusterARN string
	DataAPISecretARN  string
	DataAPIDatabase   string

	Model      string
	VideoModel string

	CallTimeout  time.Duration
	VideoTimeout time.Duration

	ExportDir    string
	ExportBucket string
	ExportPrefix string

	SSMPrefix string
	Metrics   string
}

// ConfigurationError lists every required setting that is missing.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing configuration: " + strings.Join(e.Missing, ", ")
}

// LookupFunc reads one variable, reporting whether it is set.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from environment variables and a .env file in
// the working directory (if present). Existing variables win over .env.
// Required secrets are not checked here; call Validate once every source
// has been consulted.
func Load() (*Config, error) {
	// Errors are ignored if the file doesn't exist.
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// LoadFile is Load with an explicit .env path. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup. Malformed values (unknown store,
// unparsable durations) are errors; missing secrets are not.
func FromLookup(lookup LookupFunc) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		GoogleAPIKey:      get(EnvGoogleAPIKey),
		SupabaseURL:       get(EnvSupabaseURL),
		SupabaseKey:       get(EnvSupabaseKey),
		DatabaseURL:       get(EnvDatabaseURL),
		SQLitePath:        get(EnvSQLitePath),
		DynamoTable:       get(EnvDynamoTable),
		DataAPIClusterARN: get(EnvDataAPICluster),
		DataAPISecretARN:  get(EnvDataAPISecret),
		DataAPIDatabase:   get(EnvDataAPIDatabase),
		Model:             get(EnvModel),
		VideoModel:        get(EnvVideoModel),
		ExportDir:         get(EnvExportDir),
		ExportBucket:      get(EnvExportBucket),
		ExportPrefix:      get(EnvExportPrefix),
		SSMPrefix:         strings.TrimRight(get(EnvSSMPrefix), "/"),
		Metrics:           strings.ToLower(get(EnvMetrics)),
	}
	if cfg.GoogleAPIKey == "" {
		cfg.GoogleAPIKey = get(EnvGeminiAPIKey)
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = DefaultExportDir
	}

	backend, err := store.ParseBackend(strings.ToLower(get(EnvStore)))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvStore, err)
	}
	cfg.Store = backend

	if cfg.CallTimeout, err = duration(get(EnvCallTimeout), DefaultCallTimeout); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvCallTimeout, err)
	}
	if cfg.VideoTimeout, err = duration(get(EnvVideoTimeout), DefaultVideoTimeout); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvVideoTimeout, err)
	}

	return cfg, nil
}

func duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}

// requirement ties a required setting to the field holding it.
type requirement struct {
	name  string
	value *string
}

// required lists the settings the selected backend cannot run without.
func (c *Config) required() []requirement {
	reqs := []requirement{{EnvGoogleAPIKey, &c.GoogleAPIKey}}
	switch c.Store {
	case store.BackendSupabase:
		reqs = append(reqs, requirement{EnvSupabaseURL, &c.SupabaseURL}, requirement{EnvSupabaseKey, &c.SupabaseKey})
	case store.BackendPostgres:
		reqs = append(reqs, requirement{EnvDatabaseURL, &c.DatabaseURL})
	case store.BackendDynamoDB:
		reqs = append(reqs, requirement{EnvDynamoTable, &c.DynamoTable})
	case store.BackendDataAPI:
		reqs = append(reqs,
			requirement{EnvDataAPICluster, &c.DataAPIClusterARN},
			requirement{EnvDataAPISecret, &c.DataAPISecretARN},
			requirement{EnvDataAPIDatabase, &c.DataAPIDatabase})
	}
	return reqs
}

// Missing returns the names of required settings that are empty.
func (c *Config) Missing() []string {
	var missing []string
	for _, r := range c.required() {
		if *r.value == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// Validate returns a *ConfigurationError naming every missing setting.
func (c *Config) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// VideoEnabled reports whether a real video model is configured.
func (c *Config) VideoEnabled() bool {
	return c.VideoModel != ""
}

// EMFMetrics reports whether EMF metric lines should be written.
func (c *Config) EMFMetrics() bool {
	return c.Metrics == "emf"
}

// Summary returns the non-secret settings for startup logging.
func (c *Config) Summary() map[string]string {
	return map[string]string{
		"store":        string(c.Store),
		"model":        c.Model,
		"videoModel":   c.VideoModel,
		"callTimeout":  c.CallTimeout.String(),
		"videoTimeout": c.VideoTimeout.String(),
		"exportDir":    c.ExportDir,
		"exportBucket": c.ExportBucket,
		"ssmPrefix":    c.SSMPrefix,
	}
}
