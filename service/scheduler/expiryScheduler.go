// Package scheduler arranges deferred reservation expiry. Intents are durable
// rows written in the same transaction as the reservation they watch, so a
// job can never exist for an uncommitted reservation and a committed
// reservation can never miss its job. A polling worker fires due intents.
package scheduler

import (
	"context"
	"database/sql"
	"time"
)

// Scheduler is the scheduling capability injected into the reservation
// workflow. Both calls run inside the caller's transaction.
type Scheduler interface {
	// ScheduleExpiry registers the single expiry callback for a reservation,
	// replacing any pending one.
	ScheduleExpiry(ctx context.Context, tx *sql.Tx, reservationID string, fireAt time.Time) error

	// CancelExpiry removes the pending callback if present; never an error
	// when absent.
	CancelExpiry(ctx context.Context, tx *sql.Tx, reservationID string) error
}

// Jobs is the slice of the expiry-job repository the scheduler writes through.
type Jobs interface {
	Upsert(ctx context.Context, tx *sql.Tx, reservationID string, fireAt time.Time) error
	Delete(ctx context.Context, tx *sql.Tx, reservationID string) error
}

type service struct{ jobs Jobs }

func New(jobs Jobs) Scheduler { return &service{jobs: jobs} }

func (s *service) ScheduleExpiry(ctx context.Context, tx *sql.Tx, reservationID string, fireAt time.Time) error {
	return s.jobs.Upsert(ctx, tx, reservationID, fireAt)
}

func (s *service) CancelExpiry(ctx context.Context, tx *sql.Tx, reservationID string) error {
	return s.jobs.Delete(ctx, tx, reservationID)
}
