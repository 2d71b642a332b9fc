package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_onboarding/internal/adapters/catalog"
	server "hotel_onboarding/internal/adapters/http_server"
	"hotel_onboarding/internal/adapters/imaging"
	"hotel_onboarding/internal/adapters/notify"
	"hotel_onboarding/internal/adapters/observability"
	redisad "hotel_onboarding/internal/adapters/redis"
	"hotel_onboarding/internal/app"
	"hotel_onboarding/internal/shared"
	mysqlrepo "hotel_onboarding/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	store := mysqlrepo.New(db)
	if err := store.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	cat := catalog.New()
	svc := app.NewOnboardingService(
		store, cache, cat, imaging.New(), notify.NewLogNotifier(log.Logger),
		cfg.Quality(), cfg.SessionTTL, cfg.CacheTTL,
	)

	// http
	srv := server.New(cfg.RateRPS)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Svc: svc, Catalog: cat})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
