package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/internal/adapters/clickhouse"
	"github.com/vkravets/newspulse/internal/adapters/config"
	"github.com/vkravets/newspulse/internal/adapters/database"
	"github.com/vkravets/newspulse/internal/adapters/newsapi"
	"github.com/vkravets/newspulse/internal/adapters/nlu"
	redisAdapter "github.com/vkravets/newspulse/internal/adapters/redis"
	"github.com/vkravets/newspulse/internal/adapters/telegram"
	"github.com/vkravets/newspulse/internal/analyzer"
	"github.com/vkravets/newspulse/internal/api"
	"github.com/vkravets/newspulse/internal/articles"
	"github.com/vkravets/newspulse/internal/fetcher"
	"github.com/vkravets/newspulse/internal/health"
	"github.com/vkravets/newspulse/internal/keywords"
	"github.com/vkravets/newspulse/internal/scheduler"
	"github.com/vkravets/newspulse/internal/tasks"
	"github.com/vkravets/newspulse/internal/trends"
	"github.com/vkravets/newspulse/pkg/logger"
	"github.com/vkravets/newspulse/pkg/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("newspulse starting...")

	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redisAdapter.New(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redisClient.Close()

	// Optional ClickHouse trend sink
	var trendSink trends.TrendSink
	chDB, err := initClickHouse(ctx, cfg)
	if err != nil {
		logger.Warn("clickhouse sink unavailable, trend snapshots stay in postgres only", zap.Error(err))
	} else if chDB != nil {
		defer chDB.Close()
		trendSink = clickhouse.NewRepository(chDB.DB())
	}

	// Optional Telegram trend alerts
	var notifier trends.AlertNotifier
	if cfg.Telegram.Enabled {
		tg, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		notifier = tg
	}

	// Repositories and pipeline stages
	articleRepo := articles.NewRepository(db)
	keywordRepo := keywords.NewRepository(db)

	queue := tasks.NewRedisQueue(redisClient.RDB(), cfg.Workers.QueueKey)
	producer := tasks.NewProducer(queue)

	newsFetcher := fetcher.New(newsapi.NewClient(&cfg.NewsAPI), articleRepo)
	sentimentAnalyzer := analyzer.New(nlu.NewClient(&cfg.NLU), articleRepo)

	orchestrator := tasks.NewOrchestrator(
		newsFetcher,
		sentimentAnalyzer,
		articleRepo,
		producer,
		cfg.Scheduler.HistoricLookback,
	)

	pool := tasks.NewPool(queue, orchestrator, cfg.Workers.Concurrency)
	pool.Start(ctx)

	keywordService := keywords.NewService(keywordRepo, producer, cfg.Scheduler.DefaultRefreshHours)
	trendService := trends.NewService(articleRepo)

	// Periodic workers: keyword sweep + trend snapshots
	sweepLock := redisClient.NewSweepLock(cfg.Scheduler.SweepInterval)
	sweeper := scheduler.NewSweeper(keywordRepo, producer, sweepLock)
	snapshots := trends.NewSnapshotWorker(
		trendService,
		keywordRepo,
		trendSink,
		notifier,
		cfg.Trends.SmoothingPeriod,
		cfg.Trends.AlertThreshold,
	)

	group := worker.NewGroup(ctx)
	group.Add(sweeper, cfg.Scheduler.SweepInterval)
	group.Add(snapshots, cfg.Trends.SnapshotInterval)
	group.Start()

	apiServer := api.NewServer(cfg.API.Port, keywordService, trendService)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("api server failed", zap.Error(err))
		}
	}()

	healthServer := health.NewServer(cfg.Health.Port, db, redisClient)
	go func() {
		if err := healthServer.Start(); err != nil {
			logger.Error("health server failed", zap.Error(err))
		}
	}()
	healthServer.SetReady(true)

	logger.Info("newspulse started",
		zap.Int("worker_concurrency", cfg.Workers.Concurrency),
		zap.Duration("sweep_interval", cfg.Scheduler.SweepInterval),
	)

	<-ctx.Done()

	return shutdown(apiServer, healthServer, group, pool)
}

// initConfig loads configuration and initializes the logger
func initConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// initDatabase connects to PostgreSQL and applies migrations
func initDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.RunMigrations(db.Conn(), cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// initClickHouse connects to the optional analytics sink
func initClickHouse(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	ch, err := database.NewClickHouse(&cfg.ClickHouse)
	if err != nil {
		return nil, err
	}

	if err := clickhouse.NewRepository(ch.DB()).EnsureSchema(ctx); err != nil {
		ch.Close()
		return nil, err
	}

	return ch, nil
}

// shutdown stops the moving parts in dependency order
func shutdown(apiServer *api.Server, healthServer *health.Server, group *worker.Group, pool *tasks.Pool) error {
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("api server shutdown failed", zap.Error(err))
	}
	if err := healthServer.Stop(shutdownCtx); err != nil {
		logger.Warn("health server shutdown failed", zap.Error(err))
	}

	group.Stop(shutdownTimeout)
	pool.Stop(shutdownTimeout)

	logger.Info("shutdown complete")
	return nil
}
