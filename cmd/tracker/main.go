// Package main is the entry point for the EcoTracker API server.
//
// The server owns the whole stack: account and activity commands, per-session
// achievement evaluation flows, staggered unlock notifications, the periodic
// re-evaluation sweep, and the REST interface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmt697/EcoTracker-Project/config"
	"github.com/mmt697/EcoTracker-Project/internal/application/command"
	"github.com/mmt697/EcoTracker-Project/internal/application/eventhandler"
	"github.com/mmt697/EcoTracker-Project/internal/application/query"
	"github.com/mmt697/EcoTracker-Project/internal/application/saga"
	"github.com/mmt697/EcoTracker-Project/internal/application/session"
	"github.com/mmt697/EcoTracker-Project/internal/domain/account"
	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/notification"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
	"github.com/mmt697/EcoTracker-Project/internal/domain/tips"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/messaging"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/persistence/memory"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/persistence/postgres"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/persistence/redis"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/scheduler"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/scheduler/jobs"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/service"
	httpapi "github.com/mmt697/EcoTracker-Project/internal/interface/http"
	"github.com/mmt697/EcoTracker-Project/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting EcoTracker",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────
	// 3. PERSISTENCE (PostgreSQL, or in-memory when disabled)
	// ─────────────────────────────────────────────────────────────────────
	var (
		accountRepo  account.Repository
		activityRepo activity.Repository
		unlockRepo   achievement.UnlockRepository
	)

	if cfg.Database.Disabled || cfg.Database.URL == "" {
		log.Warn("database disabled, using in-memory repositories")
		accountRepo = memory.NewAccountRepository()
		activityRepo = memory.NewActivityRepository()
		unlockRepo = memory.NewUnlockRepository()
	} else {
		log.Info("connecting to database...")
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		log.Info("checking database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")

		accountRepo = postgres.NewAccountRepository(dbConn)
		activityRepo = postgres.NewActivityRepository(dbConn)
		unlockRepo = postgres.NewUnlockRepository(dbConn)
	}

	// ─────────────────────────────────────────────────────────────────────
	// 4. CATALOGS
	// ─────────────────────────────────────────────────────────────────────
	tipsCatalog := tips.DefaultCatalog()
	achCatalog := achievement.DefaultCatalog()
	log.Info("catalogs loaded",
		"tips", tipsCatalog.Len(),
		"achievements", achCatalog.Len(),
	)

	// ─────────────────────────────────────────────────────────────────────
	// 5. REDIS STATISTICS CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────
	var statsCache query.StatsCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		redisClient, err := redis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, statistics caching disabled", "error", err)
		} else {
			defer func() {
				log.Info("closing Redis connection...")
				_ = redisClient.Close()
			}()
			statsCache = redis.NewStatsCache(redisClient, achCatalog, cfg.Redis.StatsTTL)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultConfig()
	busConfig.AsyncMode = true
	busConfig.Logger = log
	eventBus := messaging.NewEventBus(busConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────
	// 7. SESSIONS AND PER-SESSION EVALUATION FLOWS
	// ─────────────────────────────────────────────────────────────────────
	ids := service.NewUUIDGenerator()

	flowFactory := func(userID string, sess *session.Session) *saga.UnlockFlow {
		store := achievement.NewStore(achCatalog)
		guard := achievement.NewGuard(cfg.Engine.Cooldown)
		engine := achievement.NewEngine(achCatalog, store, guard, log)

		deliver := func(n notification.Notification) {
			log.Info("achievement notification displayed",
				"user_id", userID,
				"achievement_id", n.AchievementID,
				"title", n.Title,
				"points", n.Points,
			)
			if err := eventBus.Publish(shared.NewNotificationDeliveredEvent(
				userID, n.AchievementID, n.Title, n.Points,
			)); err != nil {
				log.Warn("failed to publish notification event", "error", err)
			}
		}

		sched := notification.NewScheduler(notification.Config{
			Stagger:           cfg.Engine.NotificationStagger,
			DisplayDuration:   cfg.Engine.NotificationDisplay,
			SuppressionWindow: cfg.Engine.NotificationSuppression,
		}, deliver, ids, store, guard, log)

		accessor := service.NewActivityAccessor(userID, activityRepo, tipsCatalog, sess)

		return saga.NewUnlockFlow(
			userID, store, guard, engine, sched, accessor,
			unlockRepo, eventBus,
			saga.Config{Debounce: cfg.Engine.Debounce},
			log,
		)
	}

	sessions := session.NewManager(flowFactory, ids, log)

	// ─────────────────────────────────────────────────────────────────────
	// 8. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────
	triggers := eventhandler.NewAchievementTriggers(sessions, log)
	if err := triggers.Register(eventBus); err != nil {
		return fmt.Errorf("failed to register achievement triggers: %w", err)
	}

	if statsCache != nil {
		invalidator := eventhandler.NewStatsInvalidator(statsCache, log)
		if err := invalidator.Register(eventBus); err != nil {
			return fmt.Errorf("failed to register stats invalidator: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────
	// 9. BACKGROUND SWEEP
	// ─────────────────────────────────────────────────────────────────────
	sweeper := scheduler.NewScheduler(log)
	if err := sweeper.AddJob(
		jobs.NewEvaluationSweepJob(sessions, log),
		scheduler.IntervalSchedule{Interval: cfg.Engine.SweepInterval},
	); err != nil {
		return fmt.Errorf("failed to add sweep job: %w", err)
	}
	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sweeper.Stop()

	// ─────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────
	apiLog := logger.Default()
	if cfg.App.Debug {
		apiLog = logger.New(logger.Options{
			Output: os.Stdout,
			Level:  logger.LevelDebug,
		})
	}

	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port

	server := httpapi.NewServer(serverCfg, httpapi.Dependencies{
		Register:     command.NewRegisterHandler(accountRepo, ids, eventBus),
		Authenticate: command.NewAuthenticateHandler(accountRepo, eventBus),
		LogUsage:     command.NewLogUsageHandler(activityRepo, ids, eventBus),
		TryTip:       command.NewTryTipHandler(activityRepo, tipsCatalog, eventBus),
		SaveSettings: command.NewSaveSettingsHandler(activityRepo, eventBus),
		RecordVisit:  command.NewRecordVisitHandler(activityRepo, eventBus),
		Sessions:     sessions,
		TipsCatalog:  tipsCatalog,
		Achievements: achCatalog,
		StatsCache:   statsCache,
		Logger:       apiLog,
	})

	serverErr := server.StartAsync()
	log.Info("EcoTracker is running", "address", serverCfg.Address())

	// ─────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}

	// Ends every session: stops debounce timers, wipes notification and
	// guard state, and publishes the session-ended events.
	sessions.EndAll()

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger configures structured logging for the process.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.App.Environment == config.EnvProduction {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
