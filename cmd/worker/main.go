package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/galleryhub/galleryhub/internal/db"
	"github.com/galleryhub/galleryhub/internal/notifications"
	"github.com/galleryhub/galleryhub/internal/observability"
	"github.com/galleryhub/galleryhub/internal/queue/worker"
	"github.com/galleryhub/galleryhub/internal/repo/postgres"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if !cfg.DatabaseConfigured() {
		log.Error("the worker needs a database, set DATABASE_URL or DB_HOST")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	prom := observability.NewProm(prometheus.NewRegistry())

	jobsRepo := postgres.NewJobsRepo(pool, prom)
	contactRepo := postgres.NewContactRepo(pool, prom)
	notifier := notifications.NewLogNotifier(log)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		PollInterval:  500 * time.Millisecond,
		WorkerID:      workerID,
		Concurrency:   4,
		ShutdownGrace: 10 * time.Second,
	}, jobsRepo, contactRepo, notifier, log, prom)

	log.Info("worker started", "workerId", workerID)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	log.Info("worker shutdown complete")
}
