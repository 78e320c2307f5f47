package config

import (
	"time"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
	"github.com/urfave/cli/v3"
)

type Config struct {
	App
	PostgreSQL
	HTTP
	OpenAI
	Google
	Notion
	Redis
}

type App struct {
	GenerateInterval time.Duration
	ImportStatus     domain.ImportStatus
}

type PostgreSQL struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
	MaxConns int32
}

type HTTP struct {
	Host         string
	Port         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type OpenAI struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Google holds the OAuth client used to refresh Drive access tokens.
type Google struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	DriveBaseURL string
}

type Notion struct {
	Token   string
	BaseURL string
}

// Redis is optional; an empty Addr keeps the generation lock in-process.
type Redis struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

func Load(cmd *cli.Command) *Config {
	return &Config{
		App: App{
			GenerateInterval: cmd.Duration("generate-interval"),
			ImportStatus:     domain.ImportStatus(cmd.String("import-status")),
		},
		PostgreSQL: PostgreSQL{
			Host:     cmd.String("pg-host"),
			Port:     cmd.String("pg-port"),
			Username: cmd.String("pg-username"),
			Password: cmd.String("pg-password"),
			DBName:   cmd.String("pg-dbname"),
			MaxConns: int32(cmd.Int("pg-max-conns")),
		},
		HTTP: HTTP{
			Host:         cmd.String("http-host"),
			Port:         cmd.String("http-port"),
			IdleTimeout:  cmd.Duration("http-idle-timeout"),
			ReadTimeout:  cmd.Duration("http-read-timeout"),
			WriteTimeout: cmd.Duration("http-write-timeout"),
		},
		OpenAI: OpenAI{
			APIKey:      cmd.String("openai-api-key"),
			BaseURL:     cmd.String("openai-base-url"),
			Model:       cmd.String("openai-model"),
			Temperature: cmd.Float("openai-temperature"),
			Timeout:     cmd.Duration("openai-timeout"),
		},
		Google: Google{
			ClientID:     cmd.String("google-client-id"),
			ClientSecret: cmd.String("google-client-secret"),
			TokenURL:     cmd.String("google-token-url"),
			DriveBaseURL: cmd.String("drive-base-url"),
		},
		Notion: Notion{
			Token:   cmd.String("notion-token"),
			BaseURL: cmd.String("notion-base-url"),
		},
		Redis: Redis{
			Addr:     cmd.String("redis-addr"),
			Password: cmd.String("redis-password"),
			DB:       int(cmd.Int("redis-db")),
			LockTTL:  cmd.Duration("lock-ttl"),
		},
	}
}
