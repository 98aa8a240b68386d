package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-auth/auth"
	"github.com/jrsteele09/go-session-auth/credentials"
	"github.com/jrsteele09/go-session-auth/internal/config"
	"github.com/jrsteele09/go-session-auth/server"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/jrsteele09/go-session-auth/token"
	"github.com/jrsteele09/go-session-auth/users/postgres"
)

const startupTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		zlog.Fatal().Err(err).Msg("server exited")
	}
	zlog.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log := newLogger(cfg)
	displayAppname(cfg.AppName)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// The object graph is composed once here and passed down explicitly.
	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The cache is a best-effort accelerator; the core still works
		// without it, so a cold Redis only warns at startup.
		log.Warn().Err(err).Msg("redis unreachable at startup, session cache degraded")
	}

	userStore := postgres.NewStore(pool)
	sessionStore := sessions.NewRedisStore(redisClient)

	hasher, err := credentials.NewHasher(cfg.Auth.HashCostFactor)
	if err != nil {
		return fmt.Errorf("credentials.NewHasher: %w", err)
	}

	tokens, err := newTokenManager(cfg)
	if err != nil {
		return fmt.Errorf("token.NewManager: %w", err)
	}

	authService, err := auth.NewService(
		auth.Repos{Users: userStore, Sessions: sessionStore},
		tokens,
		hasher,
		cfg.Auth.CacheTTL(),
		auth.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	srv, err := server.New(cfg, authService, log, server.WithHealthProbes(userStore, sessionStore))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      srv,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go listenAndServe(httpServer, log)
	waitForStopSignal()
	return shutdown(httpServer, cfg.HTTP.ShutdownTimeout)
}

func listenAndServe(srv *http.Server, log zerolog.Logger) {
	log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func newTokenManager(cfg *config.AppConfig) (*token.Manager, error) {
	return token.NewManager(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTTL(),
		cfg.Auth.RefreshTTL(),
		token.WithClockSkewTolerance(cfg.Auth.ClockSkewTolerance()),
	)
}

func newLogger(cfg *config.AppConfig) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
