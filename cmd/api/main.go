package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricmelo/menuhub/internal/config"
	"github.com/ricmelo/menuhub/internal/db"
	httpx "github.com/ricmelo/menuhub/internal/http"
	"github.com/ricmelo/menuhub/internal/observability"
	"github.com/ricmelo/menuhub/internal/redisclient"
	"github.com/ricmelo/menuhub/internal/repo/postgres"
	"github.com/ricmelo/menuhub/internal/session"
	"github.com/ricmelo/menuhub/internal/uploads"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is best effort; the app runs fine without a collector
	shutdownTracer, err := observability.InitTracer(context.Background(), "menuhub", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracer init failed", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	migrateCtx, cancelMigrate := config.WithTimeout(30 * time.Second)

	if err := db.Migrate(migrateCtx, pool); err != nil {
		cancelMigrate()
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureSeedOwner(migrateCtx, pool, cfg); err != nil {
		cancelMigrate()
		log.Error("seed owner failed", "err", err)
		os.Exit(1)
	}

	cancelMigrate()

	// redis is an optional session-resolve cache
	var redisCli *redisclient.Client

	if cfg.RedisAddr != "" {
		redisCli = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

		if err := redisCli.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, continuing without session cache", "err", err)
			_ = redisCli.Close()
			redisCli = nil
		}

		cancelPing()
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	uploadStore, err := uploads.NewStore(cfg.UploadDir)

	if err != nil {
		log.Error("upload dir unavailable", "err", err)
		os.Exit(1)
	}

	deps := httpx.Deps{
		Log:     log,
		Pool:    pool,
		Prom:    prom,
		Uploads: uploadStore,
		Cfg:     cfg,
	}

	if redisCli != nil {
		deps.Redis = redisCli.Raw()
	}

	router := httpx.NewRouter(deps)

	// background sweep of expired session rows
	janitorCtx, stopJanitor := context.WithCancel(context.Background())

	janitor := session.NewJanitor(
		postgres.NewSessionsRepo(pool, prom),
		time.Hour,
		log,
		func(n int64) { prom.SessionsSwept.Add(float64(n)) },
	)

	go janitor.Run(janitorCtx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	stopJanitor()

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		_ = shutdownTracer(ctx)

		if redisCli != nil {
			_ = redisCli.Close()
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
