package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/onboarding_ai/internal/config"
	v1 "github.com/kurochkinivan/onboarding_ai/internal/controller/http/v1"
	"github.com/kurochkinivan/onboarding_ai/internal/infrastructure/drive"
	"github.com/kurochkinivan/onboarding_ai/internal/infrastructure/lock"
	"github.com/kurochkinivan/onboarding_ai/internal/infrastructure/notion"
	"github.com/kurochkinivan/onboarding_ai/internal/infrastructure/oauth"
	"github.com/kurochkinivan/onboarding_ai/internal/infrastructure/openai"
	"github.com/kurochkinivan/onboarding_ai/internal/infrastructure/report_generator"
	"github.com/kurochkinivan/onboarding_ai/internal/pipeline"
	"github.com/kurochkinivan/onboarding_ai/internal/repository/postgresql"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "starting app",
		slog.Duration("generate_interval", a.cfg.App.GenerateInterval),
		slog.String("import_status", string(a.cfg.App.ImportStatus)),
		slog.String("openai_model", a.cfg.OpenAI.Model),
	)

	a.log.InfoContext(ctx, "establishing postgresql connection",
		slog.String("postgresql_host", a.cfg.PostgreSQL.Host),
		slog.String("postgresql_port", a.cfg.PostgreSQL.Port),
		slog.String("postgresql_dbname", a.cfg.PostgreSQL.DBName),
	)

	pool, err := postgresql.NewConnection(ctx, a.log, a.cfg.PostgreSQL)
	if err != nil {
		return fmt.Errorf("failed to create db connection: %w", err)
	}
	defer pool.Close()

	importsRepository := postgresql.NewImportsRepository(pool)

	reset, err := importsRepository.ResetProcessingImports(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset processing imports: %w", err)
	}
	if reset > 0 {
		a.log.WarnContext(ctx, "recovered imports left processing by a previous run", slog.Int64("count", reset))
	}

	locker, closeLocker, err := a.newLocker(ctx)
	if err != nil {
		return err
	}
	defer closeLocker()

	return a.startPipeline(ctx, pool, importsRepository, locker)
}

func (a *App) startPipeline(
	ctx context.Context,
	pool *pgxpool.Pool,
	importsRepo *postgresql.ImportsRepository,
	locker pipeline.RunLocker,
) error {
	tokensRepo := postgresql.NewTokensRepository(pool)
	coursesRepo := postgresql.NewCoursesRepository(pool)
	txManager := postgresql.NewTxManager(pool)

	driveClient := drive.New(a.log, a.cfg.Google.DriveBaseURL)

	var (
		pageSource   pipeline.PageSource
		pageSearcher pipeline.PageSearcher
	)
	if a.cfg.Notion.Token != "" {
		notionClient := notion.New(a.log, a.cfg.Notion)
		pageSource, pageSearcher = notionClient, notionClient
	} else {
		a.log.WarnContext(ctx, "notion token is not set, notion imports are disabled")
	}

	var exchanger pipeline.TokenExchanger
	if e, err := oauth.New(a.cfg.Google); err == nil {
		exchanger = e
	} else {
		a.log.WarnContext(ctx, "google oauth client is not set, drive tokens will not be refreshed")
	}

	extractor := pipeline.NewExtractor(a.log, driveClient, pageSource)
	refresher := pipeline.NewCredentialRefresher(a.log, exchanger, tokensRepo)
	aggregator := pipeline.NewAggregator(a.log, importsRepo, importsRepo, tokensRepo, refresher, extractor)
	synthesizer := pipeline.NewSynthesizer(a.log, openai.New(a.log, a.cfg.OpenAI))
	writer := pipeline.NewWriter(a.log, coursesRepo, importsRepo, txManager)
	orchestrator := pipeline.NewOrchestrator(a.log, aggregator, synthesizer, writer, locker)

	scheduler := pipeline.NewScheduler(a.log, a.cfg.App.GenerateInterval, orchestrator)
	importer := pipeline.NewImporter(a.log, a.cfg.App.ImportStatus, importsRepo, importsRepo, tokensRepo, driveClient, pageSearcher)
	exporter := pipeline.NewExporter(a.log, coursesRepo, report_generator.New())

	server := v1.NewServer(a.cfg.HTTP, v1.Handlers{
		Courses: v1.NewCoursesHandler(a.log, orchestrator, coursesRepo, exporter),
		Imports: v1.NewImportsHandler(a.log, importer),
		Health:  v1.NewHealthHandler(a.log, pool),
	})

	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "scheduler started")
		return scheduler.Run(ctx)
	})

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server", slog.String("addr", server.Addr()))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	a.log.InfoContext(ctx, "all components started")

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "app stopped with error", slog.String("err", err.Error()))

		return err
	}

	a.log.InfoContext(ctx, "app stopped gracefully")

	return nil
}

// newLocker picks the Redis lock when an address is configured and the in-process one otherwise.
func (a *App) newLocker(ctx context.Context) (pipeline.RunLocker, func(), error) {
	if a.cfg.Redis.Addr == "" {
		return lock.NewLocal(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.log.InfoContext(ctx, "using redis generation lock", slog.String("redis_addr", a.cfg.Redis.Addr))

	return lock.NewRedis(a.log, client, a.cfg.Redis.LockTTL), func() { _ = client.Close() }, nil
}

