package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationTypeUp   = "up"
	migrationTypeDown = "down"
)

const (
	exitCodeOK = iota
	exitCodeInputErr
	exitCodeInternalErr
)

type options struct {
	migrationType string
	username      string
	password      string
	host          string
	port          string
	db            string
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WarnContext(ctx, "failed to load .env", slog.String("err", err.Error()))
	}

	exitCode := exitCodeOK

	command := &cli.Command{
		Name:  "migrator",
		Usage: "Apply database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Value: migrationTypeUp, Usage: "migration type: up/down"},
			&cli.StringFlag{Name: "username", Usage: "database username", Sources: cli.EnvVars("PG_USERNAME")},
			&cli.StringFlag{Name: "password", Usage: "database password", Sources: cli.EnvVars("PG_PASSWORD")},
			&cli.StringFlag{Name: "host", Value: "127.0.0.1", Usage: "database host", Sources: cli.EnvVars("PG_HOST")},
			&cli.StringFlag{Name: "port", Value: "5432", Usage: "database port", Sources: cli.EnvVars("PG_PORT")},
			&cli.StringFlag{Name: "db", Usage: "database name", Sources: cli.EnvVars("PG_DBNAME")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := &options{
				migrationType: cmd.String("type"),
				username:      cmd.String("username"),
				password:      cmd.String("password"),
				host:          cmd.String("host"),
				port:          cmd.String("port"),
				db:            cmd.String("db"),
			}

			var err error
			exitCode, err = Run(ctx, log, opts)
			return err
		},
	}

	if err := command.Run(ctx, os.Args); err != nil {
		log.ErrorContext(ctx, "failed to apply migrations", slog.String("err", err.Error()))
		if exitCode == exitCodeOK {
			exitCode = exitCodeInputErr
		}
	}

	stop()
	os.Exit(exitCode)
}

func Run(ctx context.Context, log *slog.Logger, opts *options) (exitCode int, err error) {
	if err := opts.validate(); err != nil {
		return exitCodeInputErr, fmt.Errorf("invalid flags: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return exitCodeInternalErr, fmt.Errorf("failed to create migrations source: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", src, opts.databaseURL())
	if err != nil {
		return exitCodeInternalErr, fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := migrator.Close()
		if closeErr := errors.Join(srcErr, dbErr); closeErr != nil {
			if err == nil {
				exitCode = exitCodeInternalErr
			}
			err = errors.Join(err, closeErr)
		}
	}()

	if err := applyMigration(migrator, opts.migrationType); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.InfoContext(ctx, "no migrations to apply")
			return exitCodeOK, nil
		}

		return exitCodeInternalErr, fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.InfoContext(ctx, "migrations applied successfully", slog.String("type", opts.migrationType))

	return exitCodeOK, nil
}

func applyMigration(migrator *migrate.Migrate, migrationType string) error {
	switch migrationType {
	case migrationTypeUp:
		return migrator.Up()
	case migrationTypeDown:
		return migrator.Down()
	default:
		return fmt.Errorf("unknown migration type %q", migrationType)
	}
}

func (o *options) validate() error {
	if o.migrationType != migrationTypeUp && o.migrationType != migrationTypeDown {
		return fmt.Errorf("type must be %q or %q, got %q", migrationTypeUp, migrationTypeDown, o.migrationType)
	}

	for _, req := range []struct{ name, value string }{
		{"username", o.username},
		{"password", o.password},
		{"db", o.db},
		{"port", o.port},
	} {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}

	return nil
}

func (o *options) databaseURL() string {
	return (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.username, o.password),
		Host:     net.JoinHostPort(o.host, o.port),
		Path:     o.db,
		RawQuery: "sslmode=disable",
	}).String()
}
