package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/galleryhub/galleryhub/internal/domain/job"
	"github.com/galleryhub/galleryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{pool: pool, prom: prom}
}

func (r *JobsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}

	return fn()
}

func (r *JobsRepo) Create(ctx context.Context, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)

	err := r.observe("jobs.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO jobs (id, type, payload, status, attempts, max_attempts,
				run_at, locked_at, locked_by, last_error, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			j.ID, j.Type, j.Payload, string(j.Status), j.Attempts, j.MaxAttempts,
			j.RunAt, j.LockedAt, j.LockedBy, j.LastError, j.CreatedAt, j.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return job.Job{}, err
	}

	return j, nil
}

// ClaimNext atomically picks the oldest runnable pending job and marks it
// processing. SKIP LOCKED keeps concurrent workers from fighting over rows.
func (r *JobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	var j job.Job

	err := r.observe("jobs.claim_next", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE jobs
			 SET status = 'processing',
			     attempts = attempts + 1,
			     locked_at = NOW(),
			     locked_by = $1,
			     updated_at = NOW()
			 WHERE id = (
			     SELECT id FROM jobs
			     WHERE status = 'pending' AND run_at <= NOW()
			     ORDER BY run_at ASC, created_at ASC
			     FOR UPDATE SKIP LOCKED
			     LIMIT 1
			 )
			 RETURNING id, type, payload, status, attempts, max_attempts,
			           run_at, locked_at, locked_by, last_error, created_at, updated_at`,
			workerID,
		).Scan(
			&j.ID, &j.Type, &j.Payload, &j.Status, &j.Attempts, &j.MaxAttempts,
			&j.RunAt, &j.LockedAt, &j.LockedBy, &j.LastError, &j.CreatedAt, &j.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrNotFound
		}

		return job.Job{}, err
	}

	return j, nil
}

func (r *JobsRepo) MarkDone(ctx context.Context, id string) error {
	return r.finish(ctx, "jobs.mark_done",
		`UPDATE jobs
		 SET status = 'done', locked_at = NULL, locked_by = NULL, updated_at = NOW()
		 WHERE id = $1`, id)
}

// MarkRetry reschedules a failed attempt with a backoff delay.
func (r *JobsRepo) MarkRetry(ctx context.Context, id string, errMsg string, retryAt time.Time) error {
	return r.finish(ctx, "jobs.mark_retry",
		`UPDATE jobs
		 SET status = 'pending',
		     locked_at = NULL,
		     locked_by = NULL,
		     last_error = $2,
		     run_at = $3,
		     updated_at = NOW()
		 WHERE id = $1`, id, errMsg, retryAt)
}

// MarkFailed is terminal: the job has exhausted its attempts.
func (r *JobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	return r.finish(ctx, "jobs.mark_failed",
		`UPDATE jobs
		 SET status = 'failed',
		     locked_at = NULL,
		     locked_by = NULL,
		     last_error = $2,
		     updated_at = NOW()
		 WHERE id = $1`, id, errMsg)
}

func (r *JobsRepo) finish(ctx context.Context, op, sql string, args ...any) error {
	return r.observe(op, func() error {
		tag, err := r.pool.Exec(ctx, sql, args...)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return job.ErrNotFound
		}

		return nil
	})
}
