package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/galleryhub/galleryhub/internal/auth"
	"github.com/galleryhub/galleryhub/internal/cache"
	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/galleryhub/galleryhub/internal/db"
	httpx "github.com/galleryhub/galleryhub/internal/http"
	"github.com/galleryhub/galleryhub/internal/observability"
	"github.com/galleryhub/galleryhub/internal/repo/memory"
	"github.com/galleryhub/galleryhub/internal/repo/postgres"
	"github.com/galleryhub/galleryhub/internal/uploads"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional, real deployments use the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.UsingDefaultSecret() {
		log.Warn("running with the built-in JWT secret, set JWT_SECRET in production")
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	tracing := false

	var shutdownTracer func(context.Context) error

	if cfg.OTELEndpoint != "" {
		var err error

		shutdownTracer, err = observability.InitTracer(context.Background(), "galleryhub-api", cfg.OTELEndpoint)

		if err != nil {
			log.Error("tracer init failed, continuing without tracing", "err", err)
		} else {
			tracing = true
		}
	}

	deps := httpx.Deps{
		JWT:      auth.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		Demo:     auth.NewDemoProvider(cfg.DemoMode, cfg.DemoEmail, cfg.DemoPassword),
		Prom:     prom,
		Registry: registry,
		Tracing:  tracing,
	}

	uploadStore, err := uploads.NewService(cfg.UploadDir, cfg.MaxUploadBytes)

	if err != nil {
		log.Error("upload dir setup failed", "err", err)
		os.Exit(1)
	}

	deps.Uploads = uploadStore

	deps.Cache = buildCache(cfg, log)

	var pool interface{ Close() }

	if cfg.DatabaseConfigured() {
		pg, err := db.NewPool(cfg.DBURL)

		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}

		pool = pg

		startCtx, cancel := config.WithTimeout(15 * time.Second)

		if err := db.Migrate(startCtx, pg); err != nil {
			cancel()
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}

		if err := db.EnsureAdminUser(startCtx, pg, cfg); err != nil {
			cancel()
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}

		cancel()

		deps.Users = postgres.NewUsersRepo(pg, prom)
		deps.Content = postgres.NewContentRepo(pg, prom)
		deps.Settings = postgres.NewSettingsRepo(pg, prom)
		deps.Contact = postgres.NewContactRepo(pg, prom)
		deps.Queue = postgres.NewJobsRepo(pg, prom)
		deps.PingDB = pg.Ping
	} else {
		if !cfg.DemoMode {
			log.Error("no database configured and demo mode is off, nothing to serve")
			os.Exit(1)
		}

		log.Info("no database configured, serving from memory in demo mode")

		deps.Users = memory.NewUsersRepo()
		deps.Content = memory.NewContentRepo()
		deps.Settings = memory.NewSettingsRepo()
		deps.Contact = memory.NewContactRepo()
	}

	router := httpx.NewRouter(cfg, log, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "demoMode", cfg.DemoMode)

		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		if shutdownTracer != nil {
			if err := shutdownTracer(ctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}

		if pool != nil {
			pool.Close()
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// buildCache prefers redis when an address is configured and falls back to
// the in-process TTL cache when it cannot be reached.
func buildCache(cfg config.Config, log *slog.Logger) cache.Store {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(30 * time.Second)
	}

	ctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	redisCache, err := cache.NewRedis(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      30 * time.Second,
	})

	if err != nil {
		log.Warn("redis unreachable, using in-process cache", "err", err)
		return cache.NewMemory(30 * time.Second)
	}

	log.Info("redis cache enabled", "addr", cfg.RedisAddr)

	return redisCache
}
