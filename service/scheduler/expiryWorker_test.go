package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/honguyenminh/is216-library-manager/model"
)

type jobStoreMock struct {
	due []model.ExpiryJob

	completed []string
	failed    map[string]string
	claimErr  error
}

func (m *jobStoreMock) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ExpiryJob, error) {
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	if limit < len(m.due) {
		return m.due[:limit], nil
	}
	return m.due, nil
}

func (m *jobStoreMock) Complete(ctx context.Context, reservationID string) error {
	m.completed = append(m.completed, reservationID)
	return nil
}

func (m *jobStoreMock) MarkFailed(ctx context.Context, reservationID string, lastError string) error {
	if m.failed == nil {
		m.failed = map[string]string{}
	}
	m.failed[reservationID] = lastError
	return nil
}

func newTestWorker(jobs *jobStoreMock, cleanup CleanupFunc) *Worker {
	return NewWorker(jobs, cleanup, time.Minute, 3, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTick_CompletesAfterCleanup(t *testing.T) {
	jobs := &jobStoreMock{due: []model.ExpiryJob{
		{ReservationID: "r1", Attempts: 1},
		{ReservationID: "r2", Attempts: 1},
	}}
	var cleaned []string
	w := newTestWorker(jobs, func(ctx context.Context, id string) error {
		cleaned = append(cleaned, id)
		return nil
	})

	w.Tick(context.Background())

	require.Equal(t, []string{"r1", "r2"}, cleaned)
	require.Equal(t, []string{"r1", "r2"}, jobs.completed)
	require.Empty(t, jobs.failed)
}

func TestTick_RetriesBelowAttemptBound(t *testing.T) {
	jobs := &jobStoreMock{due: []model.ExpiryJob{{ReservationID: "r1", Attempts: 1}}}
	w := newTestWorker(jobs, func(ctx context.Context, id string) error {
		return errors.New("db down")
	})

	w.Tick(context.Background())

	// stays pending: neither completed nor failed, a later tick re-claims it
	require.Empty(t, jobs.completed)
	require.Empty(t, jobs.failed)
}

func TestTick_GivesUpAtAttemptBound(t *testing.T) {
	jobs := &jobStoreMock{due: []model.ExpiryJob{{ReservationID: "r1", Attempts: 3}}}
	w := newTestWorker(jobs, func(ctx context.Context, id string) error {
		return errors.New("db down")
	})

	w.Tick(context.Background())

	require.Empty(t, jobs.completed)
	require.Equal(t, "db down", jobs.failed["r1"])
}

func TestTick_OneBadJobDoesNotBlockOthers(t *testing.T) {
	jobs := &jobStoreMock{due: []model.ExpiryJob{
		{ReservationID: "r1", Attempts: 1},
		{ReservationID: "r2", Attempts: 1},
	}}
	w := newTestWorker(jobs, func(ctx context.Context, id string) error {
		if id == "r1" {
			return errors.New("boom")
		}
		return nil
	})

	w.Tick(context.Background())

	require.Equal(t, []string{"r2"}, jobs.completed)
}

func TestTick_ClaimErrorIsQuiet(t *testing.T) {
	jobs := &jobStoreMock{claimErr: errors.New("conn refused")}
	w := newTestWorker(jobs, func(ctx context.Context, id string) error {
		t.Fatal("cleanup should not run")
		return nil
	})

	w.Tick(context.Background())
}

func TestScheduler_Passthrough(t *testing.T) {
	rec := &jobsRecorder{}
	s := New(rec)

	fireAt := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.ScheduleExpiry(context.Background(), nil, "r1", fireAt))
	require.NoError(t, s.CancelExpiry(context.Background(), nil, "r1"))

	require.Equal(t, map[string]time.Time{"r1": fireAt}, rec.upserts)
	require.Equal(t, []string{"r1"}, rec.deletes)
}

type jobsRecorder struct {
	upserts map[string]time.Time
	deletes []string
}

func (r *jobsRecorder) Upsert(ctx context.Context, tx *sql.Tx, reservationID string, fireAt time.Time) error {
	if r.upserts == nil {
		r.upserts = map[string]time.Time{}
	}
	r.upserts[reservationID] = fireAt
	return nil
}

func (r *jobsRecorder) Delete(ctx context.Context, tx *sql.Tx, reservationID string) error {
	r.deletes = append(r.deletes, reservationID)
	return nil
}
