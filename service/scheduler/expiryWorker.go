// service/scheduler/expiryWorker.go
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/honguyenminh/is216-library-manager/model"
)

// JobStore is the claiming side of the expiry-job repository.
type JobStore interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ExpiryJob, error)
	Complete(ctx context.Context, reservationID string) error
	MarkFailed(ctx context.Context, reservationID string, lastError string) error
}

// CleanupFunc re-enters the reservation workflow's cleanup path. It must be
// idempotent: jobs are delivered at least once.
type CleanupFunc func(ctx context.Context, reservationID string) error

type Worker struct {
	jobs        JobStore
	cleanup     CleanupFunc
	interval    time.Duration
	maxAttempts int
	batchSize   int
	log         *slog.Logger

	now func() time.Time
}

func NewWorker(jobs JobStore, cleanup CleanupFunc, interval time.Duration, maxAttempts int, log *slog.Logger) *Worker {
	return &Worker{
		jobs:        jobs,
		cleanup:     cleanup,
		interval:    interval,
		maxAttempts: maxAttempts,
		batchSize:   50,
		log:         log,
		now:         time.Now,
	}
}

// Run polls for due jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		w.Tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Tick claims and processes one batch of due jobs. A job whose cleanup fails
// stays pending and is retried on later ticks; once its attempt counter
// reaches the bound it is marked failed and reported instead of retried
// forever or dropped.
func (w *Worker) Tick(ctx context.Context) {
	jobs, err := w.jobs.ClaimDue(ctx, w.now().UTC(), w.batchSize)
	if err != nil {
		w.log.Error("expiry worker claim failed", "err", err)
		return
	}

	for _, job := range jobs {
		if err := w.cleanup(ctx, job.ReservationID); err != nil {
			if job.Attempts >= w.maxAttempts {
				w.log.Error("expiry cleanup giving up",
					"reservation_id", job.ReservationID,
					"attempts", job.Attempts,
					"err", err,
				)
				if mErr := w.jobs.MarkFailed(ctx, job.ReservationID, err.Error()); mErr != nil {
					w.log.Error("expiry job mark failed", "reservation_id", job.ReservationID, "err", mErr)
				}
				continue
			}
			w.log.Warn("expiry cleanup failed, will retry",
				"reservation_id", job.ReservationID,
				"attempt", job.Attempts,
				"err", err,
			)
			continue
		}

		if err := w.jobs.Complete(ctx, job.ReservationID); err != nil {
			// The cleanup itself succeeded and is idempotent; the leftover
			// row fires again and turns into a no-op.
			w.log.Warn("expiry job complete failed", "reservation_id", job.ReservationID, "err", err)
		}
	}
}
