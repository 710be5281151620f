// repository/reservation/reservationRepository.go
package reservation

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/honguyenminh/is216-library-manager/model"
)

type Repo interface {
	Get(ctx context.Context, id string) (*model.Reservation, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Reservation, error)

	// Active means expiration_date >= today.
	ListActiveByUser(ctx context.Context, tx *sql.Tx, userID string, today time.Time) ([]model.Reservation, error)
	CountActiveByTitle(ctx context.Context, tx *sql.Tx, titleID string, today time.Time) (int, error)

	Insert(ctx context.Context, tx *sql.Tx, r *model.Reservation) error
	Update(ctx context.Context, tx *sql.Tx, r *model.Reservation) error
	Delete(ctx context.Context, tx *sql.Tx, id string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const selectReservation = `
	SELECT id, user_id, book_title_id, book_copy_id, reservation_date, expiration_date, deposit
	FROM reservations`

type rowScanner interface{ Scan(dest ...any) error }

func scanReservation(row rowScanner) (*model.Reservation, error) {
	res := &model.Reservation{}
	err := row.Scan(&res.ID, &res.UserID, &res.BookTitleID, &res.BookCopyID,
		&res.ReservationDate, &res.ExpirationDate, &res.Deposit)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repo) Get(ctx context.Context, id string) (*model.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx, selectReservation+` WHERE id = $1`, id))
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Reservation, error) {
	return scanReservation(tx.QueryRowContext(ctx, selectReservation+` WHERE id = $1 FOR UPDATE`, id))
}

func (r *repo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, selectReservation+` ORDER BY reservation_date DESC, id`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repo) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		selectReservation+` WHERE user_id = $1 ORDER BY reservation_date DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repo) ListActiveByUser(ctx context.Context, tx *sql.Tx, userID string, today time.Time) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx,
		selectReservation+` WHERE user_id = $1 AND expiration_date >= $2`, userID, today)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.BookTitleID, &res.BookCopyID,
			&res.ReservationDate, &res.ExpirationDate, &res.Deposit); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *repo) CountActiveByTitle(ctx context.Context, tx *sql.Tx, titleID string, today time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM reservations
		WHERE book_title_id = $1
		AND expiration_date >= $2`
	var n int
	err := tx.QueryRowContext(ctx, q, titleID, today).Scan(&n)
	return n, err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	res.ID = uuid.NewString()
	const q = `
		INSERT INTO reservations (id, user_id, book_title_id, book_copy_id, reservation_date, expiration_date, deposit)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := tx.ExecContext(ctx, q, res.ID, res.UserID, res.BookTitleID, res.BookCopyID,
		res.ReservationDate, res.ExpirationDate, res.Deposit)
	return err
}

func (r *repo) Update(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	// Deposit and dates are immutable after creation.
	const q = `
		UPDATE reservations
		SET book_title_id = $2,
			book_copy_id = $3
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, res.ID, res.BookTitleID, res.BookCopyID)
	return err
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `DELETE FROM reservations WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
