package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rinkdraft/rinkdraft/internal/auth"
	"github.com/rinkdraft/rinkdraft/internal/config"
	"github.com/rinkdraft/rinkdraft/internal/dbconfig"
	draftapp "github.com/rinkdraft/rinkdraft/internal/draft/draft"
	"github.com/rinkdraft/rinkdraft/internal/draft/gateway"
	"github.com/rinkdraft/rinkdraft/internal/draft/orchestrator"
	"github.com/rinkdraft/rinkdraft/internal/draft/outbox"
	"github.com/rinkdraft/rinkdraft/internal/draft/pick"
	"github.com/rinkdraft/rinkdraft/internal/draft/team"
	"github.com/rinkdraft/rinkdraft/internal/models"
	"github.com/rinkdraft/rinkdraft/internal/players"
	"github.com/rinkdraft/rinkdraft/internal/presence"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create connection pool")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("database", dbCfg.Database).
		Str("nats_url", cfg.NATSURL).
		Str("port", cfg.Port).
		Msg("starting draftd")

	// Repositories.
	draftRepo := draftapp.NewRepository(pool)
	teamRepo := team.NewRepository(pool)
	pickRepo := pick.NewRepository(pool)
	playerRepo := players.NewRepository(pool)
	presenceRepo := presence.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	// App layers.
	defaults := models.DraftSettings{
		Rounds:         cfg.Draft.Rounds,
		TimePerPickSec: cfg.Draft.TimePerPickSec,
	}
	draftApp := draftapp.NewApp(draftRepo, teamRepo, outboxRepo, defaults)
	teamApp := team.NewApp(teamRepo, draftApp, outboxRepo)
	playersApp := players.NewApp(playerRepo)
	pickApp := pick.NewApp(pickRepo, draftApp, teamApp, playersApp, outboxRepo)
	presenceApp := presence.NewApp(presenceRepo)

	// Outbox relay.
	jsCfg := outbox.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATSURL
	publisher, err := outbox.NewJetStreamPublisher(jsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create JetStream publisher")
	}
	defer publisher.Close()

	outboxWorker := outbox.NewWorker(outboxRepo, publisher, outbox.DefaultWorkerConfig())

	// Scheduler.
	orch := orchestrator.New(draftApp, orchestrator.Config{
		BatchSize:  cfg.Scheduler.BatchSize,
		NumWorkers: cfg.Scheduler.NumWorkers,
		NATSURL:    cfg.NATSURL,
	})
	defer orch.Close()

	// Gateway.
	connMgr := gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), presenceApp)

	ecCfg := gateway.DefaultJetStreamConsumerConfig()
	ecCfg.URL = cfg.NATSURL
	eventConsumer, err := gateway.NewEventConsumer(connMgr, ecCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event consumer")
	}
	defer eventConsumer.Stop()

	service := gateway.NewService(draftApp, teamApp, pickApp, playersApp, presenceApp, auth.StaticResolver{}, connMgr)

	mux := http.NewServeMux()
	service.RegisterRoutes(mux)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(mux),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		connMgr.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return eventConsumer.Start(gctx)
	})
	g.Go(func() error {
		if err := outboxWorker.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return outboxWorker.Stop()
	})
	g.Go(func() error {
		if err := orch.StartEventConsumer(gctx); err != nil {
			return err
		}
		return orch.RunScheduler(gctx)
	})
	g.Go(func() error {
		return presenceApp.RunJanitor(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("draftd exited with error")
	}
	log.Info().Msg("draftd shut down cleanly")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
