package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/bot"
	"github.com/newscluster/telegram-bot/internal/database"
	apperrors "github.com/newscluster/telegram-bot/internal/errors"
	"github.com/newscluster/telegram-bot/internal/health"
	"github.com/newscluster/telegram-bot/internal/i18n"
	"github.com/newscluster/telegram-bot/internal/idempotency"
	"github.com/newscluster/telegram-bot/internal/jobs"
	jobhandlers "github.com/newscluster/telegram-bot/internal/jobs/handlers"
	"github.com/newscluster/telegram-bot/internal/lifecycle"
	"github.com/newscluster/telegram-bot/internal/middleware"
	"github.com/newscluster/telegram-bot/internal/news"
	"github.com/newscluster/telegram-bot/internal/ratelimit"
	"github.com/newscluster/telegram-bot/internal/repository"
	"github.com/newscluster/telegram-bot/internal/state"
	"github.com/newscluster/telegram-bot/internal/subscriber"
	"github.com/newscluster/telegram-bot/pkg/config"
	"github.com/newscluster/telegram-bot/pkg/graceful"
	"github.com/newscluster/telegram-bot/pkg/logger"
	"github.com/newscluster/telegram-bot/pkg/metrics"
	pkgredis "github.com/newscluster/telegram-bot/pkg/redis"

	_ "github.com/lib/pq"
)

const (
	sessionTTL    = 30 * time.Minute
	sweepInterval = time.Hour
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)

	if err := logger.InitSentry(*cfg); err != nil {
		log.Error("failed to initialize sentry", slog.Any("error", err))
	}

	config.Watch(v, log)

	log.Info("starting news cluster bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("http_port", cfg.Server.Port),
	)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("bot terminated with error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("news cluster bot stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, cfg.Database.MigrationsDir); err != nil {
		return err
	}

	redisClient, err := pkgredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Conversation state machine with a Redis-backed session store.
	storage := state.NewRedisStorage(redisClient.Client, log)
	fsm := state.NewStateMachine(storage, log, redisClient.Client)
	state.RegisterTransitionRecorder(metrics.RecordStateTransition)
	sessionCleaner := state.NewCleaner(redisClient.Client, storage, log, sessionTTL)

	// Subscriber storage and caching.
	repo := repository.NewSubscriberRepository(db, log)
	subscribers := subscriber.NewService(repo, subscriber.NewCache(redisClient.Client), log)

	i18nManager, err := i18n.Load("en")
	if err != nil {
		return err
	}

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled, metrics.RecordError)

	b, err := bot.New(cfg.Bot, log)
	if err != nil {
		return err
	}

	// The digest pipeline sends through the bot itself.
	sender := b.Sender()
	feed := news.NewFeedClient(cfg.News.FeedBaseURL, cfg.News.FetchTimeout, log)
	newsService := news.NewService(
		feed,
		sender,
		cfg.News.RecencyWindow,
		cfg.News.SimilarityThreshold,
		cfg.News.MaxClusters,
		log,
	)

	// Duplicate-update protection and per-user rate limits.
	idemManager := idempotency.NewManager(idempotency.NewRedisStore(redisClient.Client, log), log)
	idemCleaner := idempotency.NewCleaner(redisClient.Client, log, sweepInterval)

	limiter := ratelimit.NewAdaptiveLimiter(
		ratelimit.NewRedisLimiter(redisClient.Client, log),
		ratelimit.NewMemoryLimiter(log),
		log,
	)
	rules := ratelimit.NewRules(cfg.RateLimit)
	rateCleaner := ratelimit.NewCleaner(redisClient.Client, log, sweepInterval)

	b.Setup(bot.SetupParams{
		Subscribers: subscribers,
		News:        newsService,
		FSM:         fsm,
		I18n:        i18nManager,
		ErrHandler:  errHandler,
		Middlewares: []telebot.MiddlewareFunc{
			middleware.RateLimit(limiter, rules, i18nManager, log),
			middleware.Idempotency(idemManager, log),
		},
	})

	// Background jobs: the scheduler enqueues the daily broadcast, the worker
	// fans it out and delivers per subscriber.
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	queue := jobs.NewManager(redisOpt, log)
	defer queue.Close()

	worker := jobs.NewWorker(redisOpt, map[string]int{
		jobs.QueueCritical: 6,
		jobs.QueueDefault:  3,
		jobs.QueueLow:      1,
	}, log)
	worker.RegisterHandler(jobs.TaskTypeDigestBroadcast, jobhandlers.NewDigestBroadcastHandler(subscribers, queue, log))
	worker.RegisterHandler(jobs.TaskTypeDigestDeliver, jobhandlers.NewDigestDeliverHandler(subscribers, newsService, sender, i18nManager, log))
	worker.RegisterHandler(jobs.TaskTypeSessionsCleanup, jobhandlers.NewSessionsCleanupHandler(sessionCleaner, log))

	scheduler := jobs.NewScheduler(redisOpt, cfg.News.DigestCron, log)
	if err := scheduler.RegisterTasks(); err != nil {
		return err
	}

	// Health probes over every external dependency.
	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	probes := lifecycle.NewProbes(log, checker.Healthy)

	server := graceful.NewServer(log, &http.Server{
		Addr:    cfg.Server.Port,
		Handler: logger.Middleware(httpMux(probes, checker)),
	}, cfg.Server.ShutdownTimeout)

	go idemCleaner.Run(ctx)
	go rateCleaner.Run(ctx)
	go metrics.NewSessionCollector(fsm).Run(ctx)

	scheduler.Run()

	workerErr := make(chan error, 1)
	go func() { workerErr <- worker.Run() }()

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.ListenAndServe(ctx) }()

	go b.Start()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-workerErr:
		runErr = err
	case err := <-serverErr:
		runErr = err
	}

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram_bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	shutdown.Register("scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	shutdown.Register("worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	return runErr
}

func httpMux(probes *lifecycle.Probes, checker *health.Checker) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Liveness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Readiness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(checker.Check(r.Context()))
	})

	return mux
}
