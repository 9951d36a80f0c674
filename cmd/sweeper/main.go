package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"drawlab/internal/admin"
	"drawlab/internal/config"
	"drawlab/internal/logging"
	"drawlab/internal/store"
	"drawlab/internal/student"
)

// Sweeper purges expired student sessions, dead password reset tokens
// and stale admin locks on a fixed interval.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	studentRepo := student.NewRepository(db.Client)
	adminRepo := admin.NewRepository(db.Client)

	log.Info().Dur("interval", cfg.SweepInterval).Msg("sweeper started")

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	sweep(ctx, log, studentRepo, adminRepo)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			sweep(ctx, log, studentRepo, adminRepo)
		}
	}
}

func sweep(ctx context.Context, log zerolog.Logger, students student.Repository, admins *admin.Repository) {
	now := time.Now().UTC()

	sessions, err := students.DeleteExpiredSessions(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("session sweep failed")
	}
	resets, err := students.DeleteDeadResets(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("reset token sweep failed")
	}
	locks, err := admins.DeleteExpiredLock(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("admin lock sweep failed")
	}

	log.Info().
		Int64("sessions", sessions).
		Int64("resets", resets).
		Int64("locks", locks).
		Msg("sweep complete")
}
