// repository/user/userRepository.go
package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/honguyenminh/is216-library-manager/model"
)

// ErrInsufficientBalance is returned when a conditional debit touches no row.
var ErrInsufficientBalance = errors.New("insufficient balance")

type Repo interface {
	Get(ctx context.Context, id string) (*model.User, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.User, error)

	// DebitDeposit charges a deposit inside the caller's transaction and
	// records a DEPOSIT_CHARGE ledger row. Fails with ErrInsufficientBalance
	// when the balance cannot cover the amount.
	DebitDeposit(ctx context.Context, tx *sql.Tx, userID string, amount int64, reservationID *string) error

	// CreditDeposit returns money to the user and records a ledger row of the
	// given entry type (refund or manual credit).
	CreditDeposit(ctx context.Context, tx *sql.Tx, userID string, amount int64, reservationID *string, entry model.LedgerType) error

	ListLedger(ctx context.Context, userID string) ([]model.DepositLedger, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Get(ctx context.Context, id string) (*model.User, error) {
	const q = `
		SELECT id, name, email, role, balance, created_at
		FROM users
		WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	const q = `
		SELECT id, name, email, role, balance, created_at
		FROM users
		WHERE id = $1
		FOR UPDATE`
	return scanUser(tx.QueryRowContext(ctx, q, id))
}

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Balance, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) DebitDeposit(ctx context.Context, tx *sql.Tx, userID string, amount int64, reservationID *string) error {
	// Guard: only debit if sufficient.
	const q = `
		UPDATE users
		SET balance = balance - $2
		WHERE id = $1
		AND balance >= $2
		RETURNING balance`
	var after int64
	err := tx.QueryRowContext(ctx, q, userID, amount).Scan(&after)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInsufficientBalance
	}
	if err != nil {
		return err
	}
	return r.insertLedger(ctx, tx, userID, reservationID, model.LedgerDepositCharge, -amount, after)
}

func (r *repo) CreditDeposit(ctx context.Context, tx *sql.Tx, userID string, amount int64, reservationID *string, entry model.LedgerType) error {
	const q = `
		UPDATE users
		SET balance = balance + $2
		WHERE id = $1
		RETURNING balance`
	var after int64
	if err := tx.QueryRowContext(ctx, q, userID, amount).Scan(&after); err != nil {
		return err
	}
	return r.insertLedger(ctx, tx, userID, reservationID, entry, amount, after)
}

func (r *repo) insertLedger(ctx context.Context, tx *sql.Tx, userID string, reservationID *string, entry model.LedgerType, amount, after int64) error {
	const q = `
		INSERT INTO deposit_ledger (user_id, reservation_id, entry_type, amount, balance_after)
		VALUES ($1,$2,$3,$4,$5)`
	_, err := tx.ExecContext(ctx, q, userID, reservationID, entry, amount, after)
	return err
}

func (r *repo) ListLedger(ctx context.Context, userID string) ([]model.DepositLedger, error) {
	const q = `
		SELECT id, user_id, reservation_id, entry_type, amount, balance_after, created_at
		FROM deposit_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DepositLedger
	for rows.Next() {
		var l model.DepositLedger
		if err := rows.Scan(&l.ID, &l.UserID, &l.ReservationID, &l.EntryType, &l.Amount, &l.BalanceAfter, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
