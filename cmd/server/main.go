// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/pickup/internal/api/auth"
	"github.com/codr1/pickup/internal/api/flash"
	"github.com/codr1/pickup/internal/api/gamesapi"
	"github.com/codr1/pickup/internal/config"
	"github.com/codr1/pickup/internal/db"
	"github.com/codr1/pickup/internal/email"
	"github.com/codr1/pickup/internal/events"
	"github.com/codr1/pickup/internal/games"
	"github.com/codr1/pickup/internal/ratelimit"
	"github.com/codr1/pickup/internal/scheduler"
)

const dbPingTimeout = 3 * time.Second

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)
	if cfg.Features.EnableDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	loc := cfg.Location()

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	if err := database.PingContext(pingCtx); err != nil {
		log.Warn().Err(err).Msg("Database ping failed, continuing")
	}
	cancel()

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionStore, err := auth.NewSessionStoreFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create session store: %w", err)
	}
	if closer, ok := sessionStore.(io.Closer); ok {
		defer closer.Close()
	}

	mailer, err := email.NewSenderFromConfig(cfg.Email)
	if err != nil {
		return fmt.Errorf("create email sender: %w", err)
	}
	if mailer == nil {
		log.Info().Msg("Email disabled; welcome and reminder emails will not be sent")
	}

	publisher, err := events.NewPublisherFromConfig(cfg.Events)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer publisher.Close()

	lockout := ratelimit.New(nil)
	defer lockout.Close()

	secureCookies := cfg.App.Environment == "production"
	flasher := flash.New(cfg.App.SecretKey, secureCookies)
	sessions := auth.NewSessionManager(sessionStore, cfg.Auth.SessionTTL, secureCookies)

	deps := serverDeps{
		DB:       database,
		Sessions: sessions,
		Flash:    flasher,
		Auth: auth.NewHandlers(auth.Deps{
			Accounts:    database.Queries,
			Sessions:    sessions,
			Flash:       flasher,
			EmailDomain: cfg.Auth.EmailDomain,
			Lockout:     lockout,
			TrustProxy:  cfg.Auth.TrustProxy,
			Mailer:      mailer,
			Events:      publisher,
			AppName:     cfg.App.Name,
			BaseURL:     cfg.App.BaseURL,
		}),
		Games: gamesapi.NewHandlers(gamesapi.Deps{
			Games:     database.Queries,
			Validator: games.NewValidator(games.SystemClock(), loc),
			Flash:     flasher,
			Events:    publisher,
		}),
	}

	sched, err := scheduler.New()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	err = scheduler.RegisterReminderJobs(sched, cfg.Scheduler.ReminderCron, &scheduler.ReminderJob{
		Store:    database.Queries,
		Sender:   mailer,
		Lead:     cfg.Scheduler.ReminderLead,
		Location: loc,
		BaseURL:  cfg.App.BaseURL,
	})
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Warn().Err(err).Msg("Scheduler shutdown failed")
		}
	}()

	server := newServer(cfg, deps)
	shutdownTimeout := time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
