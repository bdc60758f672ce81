// Package worker drains the jobs table: claim, execute, record outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/galleryhub/galleryhub/internal/domain/contact"
	"github.com/galleryhub/galleryhub/internal/domain/job"
	"github.com/galleryhub/galleryhub/internal/jobs"
	"github.com/galleryhub/galleryhub/internal/notifications"
	"github.com/galleryhub/galleryhub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkRetry(ctx context.Context, id string, errMsg string, retryAt time.Time) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
}

type MessageReader interface {
	GetByID(ctx context.Context, id string) (contact.Message, error)
}

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	Concurrency   int
	ShutdownGrace time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	messages MessageReader
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom
}

func New(cfg Config, repo JobsRepository, messages MessageReader, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		messages: messages,
		notifier: notifier,
		log:      log,
		prom:     prom,
	}
}

// Run polls for claimable jobs and fans them out to a bounded set of
// executors. It returns once ctx is cancelled and in-flight jobs drained
// (or the grace period elapsed).
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return w.drain(&wg)

		case <-ticker.C:
			w.claimAvailable(ctx, sem, &wg)
		}
	}
}

// claimAvailable keeps claiming until the queue is empty or every executor
// slot is busy.
func (w *Worker) claimAvailable(ctx context.Context, sem chan struct{}, wg *sync.WaitGroup) {
	for {
		select {
		case sem <- struct{}{}:
		default:
			return
		}

		j, err := w.repo.ClaimNext(ctx, w.cfg.WorkerID)

		if err != nil {
			<-sem

			if !errors.Is(err, job.ErrNotFound) && ctx.Err() == nil {
				w.log.Error("claim error", "err", err)
			}

			return
		}

		wg.Add(1)

		go func(j job.Job) {
			defer wg.Done()
			defer func() { <-sem }()

			w.execute(ctx, j)
		}(j)
	}
}

func (w *Worker) drain(wg *sync.WaitGroup) error {
	done := make(chan struct{})

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(w.cfg.ShutdownGrace):
		return errors.New("worker shutdown grace period elapsed with jobs in flight")
	}
}

func (w *Worker) execute(ctx context.Context, j job.Job) {
	start := time.Now()

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	result := "done"
	err := w.handle(ctx, j)

	// Outcomes must land even when shutdown has cancelled the run context;
	// a claimed row left in processing is never claimable again.
	recordCtx, recordCancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.ShutdownGrace)
	defer recordCancel()

	if err != nil {
		if j.Attempts >= j.MaxAttempts {
			result = "failed"

			if mErr := w.repo.MarkFailed(recordCtx, j.ID, err.Error()); mErr != nil {
				w.log.Error("mark failed error", "job_id", j.ID, "err", mErr)
			}
		} else {
			result = "retry"
			retryAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

			if mErr := w.repo.MarkRetry(recordCtx, j.ID, err.Error(), retryAt); mErr != nil {
				w.log.Error("mark retry error", "job_id", j.ID, "err", mErr)
			}
		}

		w.log.Warn("job execution failed",
			"job_id", j.ID, "job_type", j.Type,
			"attempt", j.Attempts, "max_attempts", j.MaxAttempts,
			"result", result, "err", err,
		)
	} else {
		if mErr := w.repo.MarkDone(recordCtx, j.ID); mErr != nil {
			w.log.Error("mark done error", "job_id", j.ID, "err", mErr)
		}

		w.log.Info("job done", "job_id", j.ID, "job_type", j.Type, "attempt", j.Attempts)
	}

	if w.prom != nil {
		w.prom.ObserveJob(j.Type, result, time.Since(start))
	}
}

func (w *Worker) handle(ctx context.Context, j job.Job) error {
	decoded, err := jobs.DecodePayload(j)

	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch p := decoded.(type) {
	case jobs.ContactNotifyPayload:
		msg, err := w.messages.GetByID(ctx, p.MessageID)

		if err != nil {
			return fmt.Errorf("load contact message %s: %w", p.MessageID, err)
		}

		return w.notifier.SendContactNotification(ctx, notifications.ContactNotificationInput{
			MessageID: msg.ID,
			Name:      msg.Name,
			Email:     msg.Email,
			Subject:   msg.Subject,
			Body:      msg.Body,
		})

	default:
		return fmt.Errorf("%w: %s", jobs.ErrInvalidJobType, j.Type)
	}
}
