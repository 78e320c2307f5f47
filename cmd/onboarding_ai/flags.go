package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kurochkinivan/onboarding_ai/internal/app"
	"github.com/kurochkinivan/onboarding_ai/internal/config"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
	"github.com/kurochkinivan/onboarding_ai/internal/infrastructure/notion"
	"github.com/kurochkinivan/onboarding_ai/internal/infrastructure/openai"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2/google"
)

var version = "dev"

func cmd() *cli.Command {
	return &cli.Command{
		Name:    "onboarding_ai",
		Usage:   "Onboarding course generation service",
		Version: version,
		Flags:   flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, ok := ctx.Value(loggerKey{}).(*slog.Logger)
			if !ok {
				return errors.New("failed to get logger from context")
			}

			cfg := config.Load(cmd)

			return app.New(log, cfg).Run(ctx)
		},
	}
}

func flags() []cli.Flag {
	var config string

	// yamlSource chains an optional env var in front of the YAML key.
	yamlSource := func(key string, envs ...string) cli.ValueSourceChain {
		sources := make([]cli.ValueSource, 0, len(envs)+1)
		for _, env := range envs {
			sources = append(sources, cli.EnvVar(env))
		}
		sources = append(sources, yaml.YAML(key, altsrc.NewStringPtrSourcer(&config)))

		return cli.NewValueSourceChain(sources...)
	}

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: &config,
		},
		&cli.DurationFlag{
			Name:    "generate-interval",
			Aliases: []string{"g"},
			Usage:   "Run course generation on this interval, 0 disables scheduled runs",
			Sources: yamlSource("app.generate_interval", "GENERATE_INTERVAL"),
		},
		&cli.StringFlag{
			Name:      "import-status",
			Usage:     "Set status assigned to imported files (PENDING_AI or READY_FOR_AI)",
			Value:     string(domain.StatusPendingAI),
			Sources:   yamlSource("app.import_status", "IMPORT_STATUS"),
			Validator: validateImportStatus,
		},
		&cli.StringFlag{
			Name:     "pg-host",
			Usage:    "Set PostgreSQL host",
			Value:    "localhost",
			Sources:  yamlSource("postgresql.host", "PG_HOST"),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-port",
			Usage:    "Set PostgreSQL port",
			Value:    "5432",
			Sources:  yamlSource("postgresql.port", "PG_PORT"),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-username",
			Usage:    "Set PostgreSQL username",
			Sources:  yamlSource("postgresql.username", "PG_USERNAME"),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-password",
			Usage:    "Set PostgreSQL password",
			Sources:  yamlSource("postgresql.password", "PG_PASSWORD"),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-dbname",
			Usage:    "Set PostgreSQL database name",
			Value:    "onboarding_ai",
			Sources:  yamlSource("postgresql.dbname", "PG_DBNAME"),
			Required: true,
		},
		&cli.IntFlag{
			Name:    "pg-max-conns",
			Usage:   "Set PostgreSQL pool size",
			Value:   10,
			Sources: yamlSource("postgresql.max_conns"),
		},
		&cli.StringFlag{
			Name:    "http-host",
			Usage:   "Set HTTP server host",
			Value:   "localhost",
			Sources: yamlSource("http.host"),
		},
		&cli.StringFlag{
			Name:    "http-port",
			Usage:   "Set HTTP server port",
			Value:   "8080",
			Sources: yamlSource("http.port", "PORT"),
		},
		&cli.DurationFlag{
			Name:    "http-idle-timeout",
			Usage:   "Set HTTP server idle timeout",
			Value:   1 * time.Minute,
			Sources: yamlSource("http.idle_timeout"),
		},
		&cli.DurationFlag{
			Name:    "http-read-timeout",
			Usage:   "Set HTTP server read timeout",
			Value:   15 * time.Second,
			Sources: yamlSource("http.read_timeout"),
		},
		&cli.DurationFlag{
			Name:    "http-write-timeout",
			Usage:   "Set HTTP server write timeout, generation requests wait for the whole run",
			Value:   5 * time.Minute,
			Sources: yamlSource("http.write_timeout"),
		},
		&cli.StringFlag{
			Name:     "openai-api-key",
			Usage:    "Set OpenAI API key",
			Sources:  yamlSource("openai.api_key", "OPENAI_API_KEY"),
			Required: true,
		},
		&cli.StringFlag{
			Name:    "openai-base-url",
			Usage:   "Set OpenAI API base URL",
			Value:   openai.DefaultBaseURL,
			Sources: yamlSource("openai.base_url", "OPENAI_BASE_URL"),
		},
		&cli.StringFlag{
			Name:    "openai-model",
			Usage:   "Set model used for course synthesis",
			Value:   openai.DefaultModel,
			Sources: yamlSource("openai.model", "OPENAI_MODEL"),
		},
		&cli.FloatFlag{
			Name:    "openai-temperature",
			Usage:   "Set sampling temperature",
			Value:   0.2,
			Sources: yamlSource("openai.temperature"),
		},
		&cli.DurationFlag{
			Name:    "openai-timeout",
			Usage:   "Set timeout of one OpenAI request",
			Value:   2 * time.Minute,
			Sources: yamlSource("openai.timeout"),
		},
		&cli.StringFlag{
			Name:    "google-client-id",
			Usage:   "Set Google OAuth client id used to refresh Drive tokens",
			Sources: yamlSource("google.client_id", "GOOGLE_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:    "google-client-secret",
			Usage:   "Set Google OAuth client secret",
			Sources: yamlSource("google.client_secret", "GOOGLE_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:    "google-token-url",
			Usage:   "Set Google OAuth token endpoint",
			Value:   google.Endpoint.TokenURL,
			Sources: yamlSource("google.token_url"),
		},
		&cli.StringFlag{
			Name:    "drive-base-url",
			Usage:   "Override Google Drive API endpoint",
			Sources: yamlSource("google.drive_base_url"),
		},
		&cli.StringFlag{
			Name:    "notion-token",
			Usage:   "Set Notion internal integration token, empty disables Notion",
			Sources: yamlSource("notion.token", "NOTION_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "notion-base-url",
			Usage:   "Set Notion API base URL",
			Value:   notion.DefaultBaseURL,
			Sources: yamlSource("notion.base_url"),
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Set Redis address for the shared generation lock, empty keeps the lock in-process",
			Sources: yamlSource("redis.addr", "REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Set Redis password",
			Sources: yamlSource("redis.password", "REDIS_PASSWORD"),
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   "Set Redis database",
			Sources: yamlSource("redis.db"),
		},
		&cli.DurationFlag{
			Name:    "lock-ttl",
			Usage:   "Set how long a generation lock outlives a crashed holder",
			Value:   15 * time.Minute,
			Sources: yamlSource("redis.lock_ttl"),
		},
	}
}

func validateImportStatus(status string) error {
	if !domain.ImportStatus(status).IsPending() {
		return fmt.Errorf("import status must be one of %v, got %q", domain.PendingStatuses, status)
	}

	return nil
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
