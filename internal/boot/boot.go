// Package boot wires configuration, AWS clients, the content store, the
// Gemini clients and the exporter into a ready workflow controller.
//
// Every command needs some subset of: AWS config, SSM secrets, a content
// store, a Gemini client and startup logging. The helpers here keep each
// command's setup a short composition.
package boot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"google.golang.org/genai"

	"github.com/fpang/edu-studio/internal/auth"
	"github.com/fpang/edu-studio/internal/chat"
	"github.com/fpang/edu-studio/internal/config"
	"github.com/fpang/edu-studio/internal/export"
	"github.com/fpang/edu-studio/internal/logging"
	"github.com/fpang/edu-studio/internal/metrics"
	"github.com/fpang/edu-studio/internal/store"
	"github.com/fpang/edu-studio/internal/video"
	"github.com/fpang/edu-studio/internal/workflow"
)

// Studio is a fully wired session: the controller plus the resources it
// owns. Close releases them.
type Studio struct {
	Config     *config.Config
	Controller *workflow.Controller
	Gemini     *genai.Client
	Store      store.ContentStore
	Exporter   *export.PDFExporter
	Video      workflow.VideoClient
	Model      string

	awsCfg *aws.Config
}

// Close releases the content store.
func (s *Studio) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// NeedsAWS reports whether cfg uses any AWS service.
func NeedsAWS(cfg *config.Config) bool {
	switch cfg.Store {
	case store.BackendDynamoDB, store.BackendDataAPI:
		return true
	}
	return cfg.SSMPrefix != "" || cfg.ExportBucket != ""
}

// InitAWS loads the default AWS config (environment, shared config files,
// instance role).
func InitAWS(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return cfg, nil
}

// LoadConfig reads the configuration from envFile (or the default .env),
// loads AWS config when any AWS service is selected, fills missing secrets
// from SSM and validates the result. The returned aws.Config is nil when
// AWS is not needed.
func LoadConfig(ctx context.Context, envFile string) (*config.Config, *aws.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if envFile != "" {
		cfg, err = config.LoadFile(envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	var awsCfg *aws.Config
	if NeedsAWS(cfg) {
		loaded, err := InitAWS(ctx)
		if err != nil {
			return nil, nil, err
		}
		awsCfg = &loaded
	}

	if cfg.SSMPrefix != "" && awsCfg != nil {
		if err := cfg.FillFromSSM(ctx, ssm.NewFromConfig(*awsCfg)); err != nil {
			return nil, nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, awsCfg, err
	}
	return cfg, awsCfg, nil
}

// OpenStore opens the content store selected by cfg.Store.
func OpenStore(ctx context.Context, cfg *config.Config, awsCfg *aws.Config) (store.ContentStore, error) {
	switch cfg.Store {
	case store.BackendSupabase:
		return store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey), nil
	case store.BackendPostgres:
		return store.OpenPostgres(ctx, cfg.DatabaseURL)
	case store.BackendSQLite:
		return store.OpenSQLite(ctx, cfg.SQLitePath)
	case store.BackendDynamoDB:
		if awsCfg == nil {
			return nil, errors.New("dynamodb store requires AWS config")
		}
		return store.NewDynamoStore(dynamodb.NewFromConfig(*awsCfg), cfg.DynamoTable), nil
	case store.BackendDataAPI:
		if awsCfg == nil {
			return nil, errors.New("dataapi store requires AWS config")
		}
		return store.NewDataAPIStore(rdsdata.NewFromConfig(*awsCfg),
			cfg.DataAPIClusterARN, cfg.DataAPISecretARN, cfg.DataAPIDatabase), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// NewExporter creates the PDF exporter writing into cfg.ExportDir on the
// local filesystem, uploading to S3 when a bucket is configured.
func NewExporter(cfg *config.Config, awsCfg *aws.Config) *export.PDFExporter {
	var opts []export.Option
	if cfg.ExportBucket != "" && awsCfg != nil {
		uploader := export.NewS3Uploader(s3.NewFromConfig(*awsCfg), cfg.ExportBucket, cfg.ExportPrefix)
		opts = append(opts, export.WithUploader(uploader))
		log.Debug().Str("bucket", cfg.ExportBucket).Str("prefix", cfg.ExportPrefix).Msg("Export upload enabled")
	}
	return export.NewPDFExporter(afero.NewOsFs(), cfg.ExportDir, opts...)
}

// NewVideoClient returns a Veo resolver when a video model is configured,
// otherwise a client that always falls back to a simulated reference.
func NewVideoClient(client *genai.Client, cfg *config.Config) workflow.VideoClient {
	if !cfg.VideoEnabled() || client == nil {
		return video.Disabled{}
	}
	return video.NewVeoResolver(client, cfg.VideoModel)
}

// Build wires a Studio from a validated configuration.
func Build(ctx context.Context, cfg *config.Config, awsCfg *aws.Config) (*Studio, error) {
	if cfg.EMFMetrics() {
		metrics.SetOutput(os.Stderr)
	}
	metrics.SetDefaultDimension("Store", string(cfg.Store))

	gemini, err := chat.NewGeminiClient(ctx, cfg.GoogleAPIKey)
	if err != nil {
		return nil, err
	}

	contents, err := OpenStore(ctx, cfg, awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}

	model := chat.ModelOrDefault(cfg.Model)
	exporter := NewExporter(cfg, awsCfg)
	videoClient := NewVideoClient(gemini, cfg)

	controller := workflow.New(workflow.Clients{
		Quiz:     chat.NewQuizGenerator(gemini, model),
		Store:    contents,
		Video:    videoClient,
		Exporter: exporter,
	}, workflow.Options{
		CallTimeout:  cfg.CallTimeout,
		VideoTimeout: cfg.VideoTimeout,
		Classify:     auth.Classify,
	})

	return &Studio{
		Config:     cfg,
		Controller: controller,
		Gemini:     gemini,
		Store:      contents,
		Exporter:   exporter,
		Video:      videoClient,
		Model:      model,
		awsCfg:     awsCfg,
	}, nil
}

// Start loads the configuration and builds a Studio.
func Start(ctx context.Context, envFile string) (*Studio, error) {
	cfg, awsCfg, err := LoadConfig(ctx, envFile)
	if err != nil {
		return nil, err
	}
	return Build(ctx, cfg, awsCfg)
}

// StartupLog is a convenience wrapper for the startup logger, pre-filled
// with the studio's resources and features.
func StartupLog(name string, initStart time.Time, s *Studio) *logging.StartupLogger {
	l := logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
	if s == nil {
		return l
	}
	cfg := s.Config
	l.ConfigMap(cfg.Summary()).
		Config("model", s.Model).
		Feature("video", cfg.VideoEnabled()).
		Feature("upload", cfg.ExportBucket != "" && s.awsCfg != nil).
		Feature("emf", cfg.EMFMetrics()).
		Resource("exportDir", s.Exporter.Dir())
	switch cfg.Store {
	case store.BackendSupabase:
		l.Resource("supabase", cfg.SupabaseURL)
	case store.BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = store.DefaultSQLitePath
		}
		l.Resource("sqlite", path)
	case store.BackendDynamoDB:
		l.Resource("dynamoTable", cfg.DynamoTable)
	case store.BackendDataAPI:
		l.Resource("dataApiCluster", cfg.DataAPIClusterARN)
	}
	l.Resource("exportBucket", cfg.ExportBucket)
	if cfg.SSMPrefix != "" {
		for _, name := range []string{config.EnvGoogleAPIKey, config.EnvSupabaseKey} {
			l.SSMParam(name, cfg.SSMPrefix+"/"+name)
		}
	}
	return l
}
