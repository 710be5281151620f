// repository/transaction/transactionRepository.go
package transaction

import (
	"context"
	"database/sql"

	"github.com/honguyenminh/is216-library-manager/model"
)

type Repo interface {
	// OpenByCopy lists unreturned borrow records for a copy.
	OpenByCopy(ctx context.Context, copyID string) ([]model.Transaction, error)
	// OpenByCopyTx is the same read inside the caller's transaction, used by
	// status-transition validation so the check and the write see one snapshot.
	OpenByCopyTx(ctx context.Context, tx *sql.Tx, copyID string) ([]model.Transaction, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const openByCopy = `
	SELECT id, user_id, book_copy_id, borrow_date, due_date, returned_date
	FROM transactions
	WHERE book_copy_id = $1
	AND returned_date IS NULL
	ORDER BY borrow_date`

func (r *repo) OpenByCopy(ctx context.Context, copyID string) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, openByCopy, copyID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repo) OpenByCopyTx(ctx context.Context, tx *sql.Tx, copyID string) ([]model.Transaction, error) {
	rows, err := tx.QueryContext(ctx, openByCopy, copyID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]model.Transaction, error) {
	defer rows.Close()
	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.BookCopyID, &t.BorrowDate, &t.DueDate, &t.ReturnedDate); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
