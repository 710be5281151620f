// repository/bookcopy/bookCopyRepository.go
package bookcopy

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/honguyenminh/is216-library-manager/model"
)

type Repo interface {
	Get(ctx context.Context, id string) (*model.BookCopy, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.BookCopy, error)
	ListAll(ctx context.Context) ([]model.BookCopy, error)

	InsertBatch(ctx context.Context, tx *sql.Tx, titleID string, n int, cond model.BookCopyCondition) ([]model.BookCopy, error)
	Update(ctx context.Context, tx *sql.Tx, c *model.BookCopy) error
	SetStatus(ctx context.Context, tx *sql.Tx, id string, status model.BookCopyStatus) error
	Delete(ctx context.Context, id string) error

	// PickAvailableForUpdate locks the first AVAILABLE copy of a title that no
	// reservation has bound yet. SKIP LOCKED keeps concurrent pickers from
	// racing for the same row; sql.ErrNoRows means no copy is free.
	PickAvailableForUpdate(ctx context.Context, tx *sql.Tx, titleID string) (string, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const selectCopy = `
	SELECT id, book_title_id, status, condition
	FROM book_copies
	WHERE id = $1`

func (r *repo) Get(ctx context.Context, id string) (*model.BookCopy, error) {
	return scanCopy(r.db.QueryRowContext(ctx, selectCopy, id))
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.BookCopy, error) {
	return scanCopy(tx.QueryRowContext(ctx, selectCopy+` FOR UPDATE`, id))
}

type rowScanner interface{ Scan(dest ...any) error }

func scanCopy(row rowScanner) (*model.BookCopy, error) {
	c := &model.BookCopy{}
	if err := row.Scan(&c.ID, &c.BookTitleID, &c.Status, &c.Condition); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repo) ListAll(ctx context.Context) ([]model.BookCopy, error) {
	const q = `
		SELECT id, book_title_id, status, condition
		FROM book_copies
		ORDER BY book_title_id, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookCopy
	for rows.Next() {
		var c model.BookCopy
		if err := rows.Scan(&c.ID, &c.BookTitleID, &c.Status, &c.Condition); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) InsertBatch(ctx context.Context, tx *sql.Tx, titleID string, n int, cond model.BookCopyCondition) ([]model.BookCopy, error) {
	const ins = `
		INSERT INTO book_copies (id, book_title_id, status, condition)
		VALUES ($1,$2,$3,$4)`
	out := make([]model.BookCopy, 0, n)
	for i := 0; i < n; i++ {
		c := model.BookCopy{
			ID:          uuid.NewString(),
			BookTitleID: titleID,
			Status:      model.CopyAvailable,
			Condition:   cond,
		}
		if _, err := tx.ExecContext(ctx, ins, c.ID, c.BookTitleID, c.Status, c.Condition); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *repo) Update(ctx context.Context, tx *sql.Tx, c *model.BookCopy) error {
	const q = `
		UPDATE book_copies
		SET status = $2,
			condition = $3
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, c.ID, c.Status, c.Condition)
	return err
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, id string, status model.BookCopyStatus) error {
	const q = `
		UPDATE book_copies
		SET status = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, status)
	return err
}

func (r *repo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM book_copies WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) PickAvailableForUpdate(ctx context.Context, tx *sql.Tx, titleID string) (string, error) {
	const q = `
		SELECT bc.id
		FROM book_copies bc
		WHERE bc.book_title_id = $1
		AND bc.status = 'AVAILABLE'
		AND NOT EXISTS (
			SELECT 1 FROM reservations res WHERE res.book_copy_id = bc.id
		)
		ORDER BY bc.id
		FOR UPDATE SKIP LOCKED
		LIMIT 1`
	var id string
	err := tx.QueryRowContext(ctx, q, titleID).Scan(&id)
	return id, err
}
