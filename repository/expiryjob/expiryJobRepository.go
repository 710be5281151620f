// repository/expiryjob/expiryJobRepository.go
package expiryjob

import (
	"context"
	"database/sql"
	"time"

	"github.com/honguyenminh/is216-library-manager/model"
)

type Repo interface {
	// Upsert writes the pending job in the caller's transaction. A second
	// schedule for the same reservation replaces the first, resetting attempts.
	Upsert(ctx context.Context, tx *sql.Tx, reservationID string, fireAt time.Time) error

	// Delete removes a pending job; removing a missing job is not an error.
	Delete(ctx context.Context, tx *sql.Tx, reservationID string) error

	// ClaimDue picks up to limit due pending jobs, bumping their attempt
	// counter. SKIP LOCKED lets concurrent workers claim disjoint sets.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ExpiryJob, error)

	Complete(ctx context.Context, reservationID string) error
	MarkFailed(ctx context.Context, reservationID string, lastError string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Upsert(ctx context.Context, tx *sql.Tx, reservationID string, fireAt time.Time) error {
	const q = `
		INSERT INTO reservation_expiry_jobs (reservation_id, fire_at, attempts, status)
		VALUES ($1,$2,0,'PENDING')
		ON CONFLICT (reservation_id) DO UPDATE
		SET fire_at = EXCLUDED.fire_at,
			attempts = 0,
			status = 'PENDING',
			last_error = NULL`
	_, err := tx.ExecContext(ctx, q, reservationID, fireAt)
	return err
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, reservationID string) error {
	const q = `DELETE FROM reservation_expiry_jobs WHERE reservation_id = $1`
	_, err := tx.ExecContext(ctx, q, reservationID)
	return err
}

func (r *repo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ExpiryJob, error) {
	const q = `
		UPDATE reservation_expiry_jobs
		SET attempts = attempts + 1
		WHERE reservation_id IN (
			SELECT reservation_id
			FROM reservation_expiry_jobs
			WHERE status = 'PENDING'
			AND fire_at <= $1
			ORDER BY fire_at
			FOR UPDATE SKIP LOCKED
			LIMIT $2
		)
		RETURNING reservation_id, fire_at, attempts, status, last_error`
	rows, err := r.db.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ExpiryJob
	for rows.Next() {
		var j model.ExpiryJob
		if err := rows.Scan(&j.ReservationID, &j.FireAt, &j.Attempts, &j.Status, &j.LastError); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *repo) Complete(ctx context.Context, reservationID string) error {
	const q = `DELETE FROM reservation_expiry_jobs WHERE reservation_id = $1`
	_, err := r.db.ExecContext(ctx, q, reservationID)
	return err
}

func (r *repo) MarkFailed(ctx context.Context, reservationID string, lastError string) error {
	const q = `
		UPDATE reservation_expiry_jobs
		SET status = 'FAILED',
			last_error = $2
		WHERE reservation_id = $1`
	_, err := r.db.ExecContext(ctx, q, reservationID, lastError)
	return err
}
