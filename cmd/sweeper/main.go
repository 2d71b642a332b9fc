package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_onboarding/internal/adapters/catalog"
	"hotel_onboarding/internal/adapters/imaging"
	"hotel_onboarding/internal/adapters/notify"
	"hotel_onboarding/internal/adapters/observability"
	redisad "hotel_onboarding/internal/adapters/redis"
	"hotel_onboarding/internal/app"
	"hotel_onboarding/internal/shared"
	mysqlrepo "hotel_onboarding/internal/storage/mysql"
)

// The sweeper marks expired ACTIVE sessions ABANDONED on a fixed interval.
// A weighted semaphore skips a tick while the previous sweep is still
// running, so overlapping sweeps never pile up.
func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Dur("interval", cfg.SweepInterval).
		Int("batch", cfg.SweepBatch).
		Msg("sweeper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	store := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewOnboardingService(
		store, cache, catalog.New(), imaging.New(), notify.NewLogNotifier(log.Logger),
		cfg.Quality(), cfg.SessionTTL, cfg.CacheTTL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sem := semaphore.NewWeighted(1)
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweeper stopping")
			return
		case <-ticker.C:
			if !sem.TryAcquire(1) {
				log.Warn().Msg("previous sweep still running, skipping tick")
				continue
			}
			go func() {
				defer sem.Release(1)
				n, err := svc.SweepExpired(ctx, cfg.SweepBatch)
				if err != nil {
					log.Warn().Err(err).Msg("sweep failed")
					return
				}
				if n > 0 {
					log.Info().Int("abandoned", n).Msg("sweep done")
				}
			}()
		}
	}
}
