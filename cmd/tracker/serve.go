package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mobile_usage_tracker/internal/app"
	"mobile_usage_tracker/internal/domain/telegram"
	"mobile_usage_tracker/internal/infra/config"
	"mobile_usage_tracker/internal/infra/httpapi"
	"mobile_usage_tracker/internal/infra/lock"
	"mobile_usage_tracker/internal/infra/logger"
	"mobile_usage_tracker/internal/infra/metrics"
	"mobile_usage_tracker/internal/infra/scheduler"
	tgbot "mobile_usage_tracker/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 15 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, scheduler and optional operator bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), migrateOnStart)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply the schema before serving")
}

func runServe(parent context.Context, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}
	logger.Init(cfg)
	log := logger.Component("main")
	log.WithFields(logrus.Fields{
		"version":     Version,
		"backend":     cfg.StoreBackend,
		"environment": cfg.Environment,
		"strict_mdn":  cfg.StrictMDN,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("could not open %s store: %w", cfg.StoreBackend, err)
	}
	defer func() {
		if err := be.close(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to close store")
		}
	}()
	log.WithField("backend", be.name).Info("Store connection established")

	if migrate {
		if err := be.migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("Schema applied")
	}

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	cycleService := app.NewCycleService(be.cycles, be.subscribers, locker, logger.Component("cycles"))
	usageService := app.NewUsageService(be.usage, be.subscribers, cycleService, locker, cfg.StrictMDN, logger.Component("usage"))
	subscriberService := app.NewSubscriberService(be.subscribers, be.cycles, be.usage, locker, logger.Component("subscribers"))
	statsService := app.NewStatsService(be.subscribers, be.cycles, be.usage)

	m := metrics.NewDefault()
	router := httpapi.NewRouter(httpapi.Deps{
		Subscribers: subscriberService,
		Cycles:      cycleService,
		Usage:       usageService,
		Health:      be,
		Metrics:     m,
		StaticDir:   cfg.StaticDir,
		Logger:      logger.Component("http"),
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Left as a nil interface when the bot is disabled; the scheduler checks for that.
	var notifier telegram.Client
	var bot *telebot.Bot
	if cfg.TelegramEnabled() {
		bot, err = tgbot.NewBot(cfg.TelegramToken, logger.Component("telegram"))
		if err != nil {
			return err
		}
		tgbot.RegisterOperatorHandlers(ctx, bot, tgbot.OperatorQueries{
			Subscribers: subscriberService,
			Cycles:      cycleService,
			Usage:       usageService,
			Stats:       statsService,
		}, cfg.OperatorTelegramID, logger.Component("telegram"))
		notifier = tgbot.NewTelebotAdapter(bot)
		log.Info("Operator bot handlers registered")
	}

	sched := scheduler.NewUsageScheduler(statsService, m, notifier, cfg.OperatorTelegramID, logger.Component("scheduler"), cfg.CronSpecMetrics, cfg.CronSpecDigest)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if bot != nil {
		g.Go(func() error {
			go bot.Start()
			<-gctx.Done()
			bot.Stop()
			return nil
		})
	}

	err = g.Wait()
	log.Info("Application shut down gracefully.")
	return err
}

// newLocker returns the Redis lease when REDIS_URL is set and process-local locks otherwise.
// Either way acquisition gives up after LOCK_WAIT.
func newLocker(ctx context.Context, cfg *config.AppConfig) (app.Locker, func(), error) {
	log := logger.Component("lock").WithField("wait", cfg.LockWait)
	if cfg.RedisURL == "" {
		log.Info("Using process-local locks")
		return app.WithWait(lock.NewLocal(), cfg.LockWait), func() {}, nil
	}

	client, err := lock.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("ttl", cfg.LockTTL).Info("Using Redis leases")
	return app.WithWait(lock.NewRedis(client, cfg.LockTTL, log), cfg.LockWait), func() { client.Close() }, nil
}
