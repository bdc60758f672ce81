package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/galleryhub/galleryhub/internal/domain/contact"
	"github.com/galleryhub/galleryhub/internal/domain/job"
	"github.com/galleryhub/galleryhub/internal/jobs"
	"github.com/galleryhub/galleryhub/internal/notifications"
)

type fakeJobsRepo struct {
	claimFn     func(ctx context.Context, workerID string) (job.Job, error)
	doneIDs     []string
	doneCtxErrs []error
	retryIDs    []string
	failedIDs   []string
}

func (f *fakeJobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	if f.claimFn != nil {
		return f.claimFn(ctx, workerID)
	}

	return job.Job{}, job.ErrNotFound
}

func (f *fakeJobsRepo) MarkDone(ctx context.Context, id string) error {
	f.doneIDs = append(f.doneIDs, id)
	f.doneCtxErrs = append(f.doneCtxErrs, ctx.Err())
	return nil
}

func (f *fakeJobsRepo) MarkRetry(ctx context.Context, id string, errMsg string, retryAt time.Time) error {
	f.retryIDs = append(f.retryIDs, id)
	return nil
}

func (f *fakeJobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.failedIDs = append(f.failedIDs, id)
	return nil
}

type fakeMessages struct {
	msg contact.Message
	err error
}

func (f *fakeMessages) GetByID(ctx context.Context, id string) (contact.Message, error) {
	if f.err != nil {
		return contact.Message{}, f.err
	}

	return f.msg, nil
}

type fakeNotifier struct {
	sent    []notifications.ContactNotificationInput
	err     error
	started chan struct{} // closed when a delivery begins
	block   chan struct{} // delivery waits on this when set
}

func (f *fakeNotifier) SendContactNotification(ctx context.Context, in notifications.ContactNotificationInput) error {
	if f.started != nil {
		close(f.started)
		f.started = nil
	}

	if f.block != nil {
		<-f.block
	}

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, in)

	return nil
}

func contactJob(t *testing.T, attempts, maxAttempts int) job.Job {
	t.Helper()

	payload, err := json.Marshal(jobs.ContactNotifyPayload{MessageID: "msg-1"})

	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	j := job.New(job.CreateRequest{Type: jobs.TypeContactNotify, Payload: payload, MaxAttempts: maxAttempts})
	j.Attempts = attempts

	return j
}

func TestExecuteDeliversAndMarksDone(t *testing.T) {
	repo := &fakeJobsRepo{}
	notifier := &fakeNotifier{}
	messages := &fakeMessages{msg: contact.Message{ID: "msg-1", Name: "Ada", Email: "ada@test"}}

	w := New(Config{WorkerID: "test"}, repo, messages, notifier, nil, nil)

	j := contactJob(t, 1, 5)
	w.execute(context.Background(), j)

	if len(notifier.sent) != 1 || notifier.sent[0].MessageID != "msg-1" {
		t.Fatalf("notifier.sent = %+v", notifier.sent)
	}

	if len(repo.doneIDs) != 1 || repo.doneIDs[0] != j.ID {
		t.Fatalf("doneIDs = %v", repo.doneIDs)
	}
}

func TestExecuteRetriesOnProviderFailure(t *testing.T) {
	repo := &fakeJobsRepo{}
	notifier := &fakeNotifier{err: errors.New("provider down")}
	messages := &fakeMessages{msg: contact.Message{ID: "msg-1"}}

	w := New(Config{WorkerID: "test"}, repo, messages, notifier, nil, nil)

	w.execute(context.Background(), contactJob(t, 1, 5))

	if len(repo.retryIDs) != 1 {
		t.Fatalf("retryIDs = %v, want one retry", repo.retryIDs)
	}

	if len(repo.failedIDs) != 0 {
		t.Fatalf("failedIDs = %v, want none", repo.failedIDs)
	}
}

func TestExecuteFailsTerminallyAfterMaxAttempts(t *testing.T) {
	repo := &fakeJobsRepo{}
	notifier := &fakeNotifier{err: errors.New("provider down")}
	messages := &fakeMessages{msg: contact.Message{ID: "msg-1"}}

	w := New(Config{WorkerID: "test"}, repo, messages, notifier, nil, nil)

	w.execute(context.Background(), contactJob(t, 5, 5))

	if len(repo.failedIDs) != 1 {
		t.Fatalf("failedIDs = %v, want terminal failure", repo.failedIDs)
	}
}

// A job claimed before shutdown must record its outcome even though the run
// context is already cancelled during drain.
func TestJobFinishingDuringShutdownIsMarkedDone(t *testing.T) {
	j := contactJob(t, 1, 5)

	claims := make(chan job.Job, 1)
	claims <- j

	repo := &fakeJobsRepo{
		claimFn: func(ctx context.Context, workerID string) (job.Job, error) {
			select {
			case claimed := <-claims:
				return claimed, nil
			default:
				return job.Job{}, job.ErrNotFound
			}
		},
	}

	notifier := &fakeNotifier{
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	started := notifier.started

	messages := &fakeMessages{msg: contact.Message{ID: "msg-1"}}

	w := New(Config{
		WorkerID:      "test",
		PollInterval:  5 * time.Millisecond,
		ShutdownGrace: time.Second,
	}, repo, messages, notifier, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() { done <- w.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("delivery never started")
	}

	// shut down while the delivery is in flight, then let it finish
	cancel()
	close(notifier.block)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not drain")
	}

	if len(repo.doneIDs) != 1 || repo.doneIDs[0] != j.ID {
		t.Fatalf("doneIDs = %v, want the drained job", repo.doneIDs)
	}

	if repo.doneCtxErrs[0] != nil {
		t.Fatalf("outcome recorded on a dead context: %v", repo.doneCtxErrs[0])
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &fakeJobsRepo{}
	w := New(Config{WorkerID: "test", PollInterval: 5 * time.Millisecond}, repo, &fakeMessages{}, &fakeNotifier{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() { done <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
