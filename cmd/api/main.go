package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habits/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habits/internal/config"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
	"github.com/comitanigiacomo/kanso-habits/internal/core/workers"
	"github.com/comitanigiacomo/kanso-habits/internal/scheduler"
	"github.com/comitanigiacomo/kanso-habits/pkg/logger"
)

type stores struct {
	db          *sqlx.DB
	users       domain.UserRepository
	habits      domain.HabitRepository
	completions domain.CompletionRepository
}

func openStores(cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		completions := repository.NewInMemoryCompletionRepository()
		return &stores{
			users:       repository.NewInMemoryUserRepository(),
			habits:      repository.NewInMemoryHabitRepository(completions),
			completions: completions,
		}, nil
	}

	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("Connecting to database...")

	db, err := sqlx.Connect("pgx", cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info().Msg("Database connected successfully.")

	return &stores{
		db:          db,
		users:       repository.NewPostgresUserRepository(db.DB),
		habits:      repository.NewPostgresHabitRepository(db),
		completions: repository.NewPostgresCompletionRepository(db),
	}, nil
}

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	st, err := openStores(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Critical: Failed to connect to database")
	}
	if st.db != nil {
		defer st.db.Close()
	}

	var rdb *redis.Client
	habitRepo := st.habits
	if cfg.RedisHost != "" {
		rdb, err = cache.NewRedisClient(cache.Options{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without cache and rate limiting")
			rdb = nil
		} else {
			defer rdb.Close()
			habitRepo = repository.NewCachedHabitRepository(st.habits, cache.NewStore(rdb, "kanso"), log)
		}
	}

	clock := domain.SystemClock{Location: cfg.Timezone}
	engine := streak.NewEngine(clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	streakWorker := workers.NewStreakWorker(habitRepo, st.completions, engine, log)
	streakWorker.Start(ctx)

	sched := scheduler.New(log, cfg.Timezone)
	refreshJob := workers.NewStreakRefreshJob(habitRepo, streakWorker)
	if err := sched.AddJob(cfg.StreakRefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register streak refresh job")
	}
	sched.Start()

	// Catch up on streaks that decayed while the server was down.
	go func() {
		_ = sched.RunNow(refreshJob)
	}()

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, st.users)
	authService := services.NewAuthService(st.users, tokenService)
	habitService := services.NewHabitService(habitRepo, st.completions, engine)
	completionService := services.NewCompletionService(st.completions, habitRepo, streakWorker)
	statsService := services.NewStatsService(habitRepo, st.completions, engine)

	router, err := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(authService),
		HabitHandler:      adapterHTTP.NewHabitHandler(habitService),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionService, clock),
		StatsHandler:      adapterHTTP.NewStatsHandler(statsService),
		Tokens:            tokenService,
		Logger:            log,
		DB:                st.db,
		Redis:             rdb,
		RateLimit:         cfg.RateLimit,
		CORSOrigins:       cfg.CORSOrigins,
		StartTime:         startTime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", cfg.Timezone.String()).Msg("Kanso Habits API running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Critical server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Stop signal received. Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}

	sched.Stop()
	cancel()
	streakWorker.Wait()

	log.Info().Msg("Server stopped gracefully.")
}
