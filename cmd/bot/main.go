package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/devaqn/financeira-bot/internal/account"
	"github.com/devaqn/financeira-bot/internal/bot"
	"github.com/devaqn/financeira-bot/internal/category"
	"github.com/devaqn/financeira-bot/internal/chat"
	"github.com/devaqn/financeira-bot/internal/database"
	apperrors "github.com/devaqn/financeira-bot/internal/errors"
	"github.com/devaqn/financeira-bot/internal/health"
	"github.com/devaqn/financeira-bot/internal/idempotency"
	"github.com/devaqn/financeira-bot/internal/ledger"
	"github.com/devaqn/financeira-bot/internal/lifecycle"
	"github.com/devaqn/financeira-bot/internal/middleware"
	"github.com/devaqn/financeira-bot/internal/ratelimit"
	"github.com/devaqn/financeira-bot/internal/reminder"
	"github.com/devaqn/financeira-bot/internal/repository"
	"github.com/devaqn/financeira-bot/pkg/config"
	"github.com/devaqn/financeira-bot/pkg/graceful"
	"github.com/devaqn/financeira-bot/pkg/logger"
	pkgredis "github.com/devaqn/financeira-bot/pkg/redis"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)

	log.Info("starting finance bot",
		slog.String("env", cfg.AppEnv),
		slog.Bool("transaction_types", cfg.Database.TransactionTypes),
	)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			log.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
	}

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		log.Error("database unavailable", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, cfg.Database.Migrations); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	table, catFile, err := loadCategories(ctx, cfg, db, log)
	if err != nil {
		log.Error("failed to load categories", slog.Any("error", err))
		os.Exit(1)
	}

	var redisClient *goredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Error("redis unavailable", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		log.Warn("redis not configured, using in-memory deduplication and rate limiting")
	}

	caps := ledger.Capabilities{TransactionTypes: cfg.Database.TransactionTypes}

	store := repository.NewLedgerStore(db, caps, log)
	engine := ledger.NewEngine(store, table, caps, log)

	acctRepo := repository.NewAccountRepository(db, log)
	accounts := account.NewService(acctRepo, account.NewCache(redisClient), log)

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)
	processor := chat.NewProcessor(accounts, engine, table, errHandler, log)

	b, err := bot.New(*cfg, log, processor, buildDeduper(redisClient, log), buildRateLimit(cfg, redisClient, log), errHandler)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	if redisClient != nil {
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	opsServer := buildOpsServer(cfg, checker, log)
	if opsServer != nil {
		go func() {
			if err := opsServer.ListenAndServe(ctx); err != nil {
				log.Error("ops server stopped", slog.Any("error", err))
			}
		}()
	}

	sweeper := reminder.NewSweeper(acctRepo, b.Notifier(), cfg.Reminder.LowBalanceThreshold, log)
	scheduler, startupTimer := startReminder(ctx, cfg, sweeper, log)

	if cfg.Categories.Watch {
		catRepo := repository.NewCategoryRepository(db, log)
		catFile.Watch(func(defs []category.Definition) {
			cats, syncErr := catRepo.Sync(context.Background(), defs)
			if syncErr != nil {
				log.Error("failed to sync reloaded categories", slog.Any("error", syncErr))
				return
			}
			table.Replace(cats)
			log.Info("category table reloaded", slog.Int("categories", len(cats)))
		})
	}

	go b.Start()
	log.Info("bot started")

	<-ctx.Done()

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	if scheduler != nil {
		shutdown.Register("reminder", func(shutdownCtx context.Context) error {
			if startupTimer != nil {
				startupTimer.Stop()
			}
			select {
			case <-scheduler.Stop().Done():
				return nil
			case <-shutdownCtx.Done():
				return shutdownCtx.Err()
			}
		})
	}
	shutdown.Register("database", func(context.Context) error {
		return db.Close()
	})
	if redisClient != nil {
		shutdown.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}
	if cfg.Sentry.Enabled {
		shutdown.Register("sentry", func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("finance bot stopped")
}

func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("database connected", slog.String("name", cfg.Database.Name))

	return db, nil
}

// loadCategories reads the keyword table from YAML, mirrors it into the
// categories table and returns the in-memory table used by the classifier.
func loadCategories(ctx context.Context, cfg *config.Config, db *sql.DB, log *slog.Logger) (*category.Table, *category.File, error) {
	catFile := category.NewFile(cfg.Categories.File, log)

	defs, err := catFile.Load()
	if err != nil {
		return nil, nil, err
	}

	catRepo := repository.NewCategoryRepository(db, log)
	cats, err := catRepo.Sync(ctx, defs)
	if err != nil {
		return nil, nil, err
	}

	log.Info("categories loaded", slog.Int("categories", len(cats)))

	return category.NewTable(cats), catFile, nil
}

func buildDeduper(redisClient *goredis.Client, log *slog.Logger) *idempotency.Deduper {
	var store idempotency.Store
	if redisClient != nil {
		store = idempotency.NewRedisStore(redisClient, log)
	} else {
		store = idempotency.NewMemoryStore()
	}

	return idempotency.NewDeduper(store, idempotency.DefaultTTL, log)
}

func buildRateLimit(cfg *config.Config, redisClient *goredis.Client, log *slog.Logger) *middleware.RateLimitMiddleware {
	rules := ratelimit.NewRules(cfg.RateLimit)
	if !rules.Enabled() {
		return nil
	}

	memory := ratelimit.NewMemoryLimiter(log)

	limiter := memory
	if redisClient != nil {
		limiter = ratelimit.NewAdaptiveLimiter(ratelimit.NewRedisLimiter(redisClient, log), memory, log)
	}

	return middleware.NewRateLimitMiddleware(limiter, rules, log)
}

func buildOpsServer(cfg *config.Config, checker *health.Checker, log *slog.Logger) *graceful.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checker.Handler())

	handler := logger.Middleware(middleware.NewHTTPLogging(log)(mux))

	return graceful.NewServer(log, &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}, shutdownTimeout)
}

// startReminder schedules the low balance sweep: cron for the recurring run
// plus a one-shot shortly after startup.
func startReminder(ctx context.Context, cfg *config.Config, sweeper *reminder.Sweeper, log *slog.Logger) (*cron.Cron, *time.Timer) {
	if !cfg.Reminder.Enabled {
		return nil, nil
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Reminder.Schedule, func() {
		if err := sweeper.Run(ctx); err != nil {
			log.Error("low balance sweep failed", slog.Any("error", err))
		}
	}); err != nil {
		log.Error("invalid reminder schedule, sweep disabled",
			slog.String("schedule", cfg.Reminder.Schedule),
			slog.Any("error", err),
		)
		return nil, nil
	}

	startupTimer := time.AfterFunc(time.Minute, func() {
		if err := sweeper.Run(ctx); err != nil {
			log.Error("startup low balance sweep failed", slog.Any("error", err))
		}
	})

	scheduler.Start()

	return scheduler, startupTimer
}
