// repository/booktitle/bookTitleRepository.go
package booktitle

import (
	"context"
	"database/sql"

	"github.com/honguyenminh/is216-library-manager/model"
)

type Repo interface {
	Get(ctx context.Context, id string) (*model.BookTitle, error)
	GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.BookTitle, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const selectTitle = `
	SELECT bt.id, bt.title, bt.image_url, bt.price, bt.can_borrow, bt.max_online_reservations,
		COALESCE(array_agg(a.name ORDER BY a.name) FILTER (WHERE a.name IS NOT NULL), '{}')
	FROM book_titles bt
	LEFT JOIN book_authors ba ON ba.book_title_id = bt.id
	LEFT JOIN authors a ON a.id = ba.author_id
	WHERE bt.id = $1
	GROUP BY bt.id`

func (r *repo) Get(ctx context.Context, id string) (*model.BookTitle, error) {
	return scanTitle(r.db.QueryRowContext(ctx, selectTitle, id))
}

func (r *repo) GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.BookTitle, error) {
	return scanTitle(tx.QueryRowContext(ctx, selectTitle, id))
}

type rowScanner interface{ Scan(dest ...any) error }

func scanTitle(row rowScanner) (*model.BookTitle, error) {
	t := &model.BookTitle{}
	var authors []byte
	err := row.Scan(&t.ID, &t.Title, &t.ImageURL, &t.Price, &t.CanBorrow, &t.MaxOnlineReservations, &authors)
	if err != nil {
		return nil, err
	}
	t.Authors = parseTextArray(authors)
	return t, nil
}

// parseTextArray decodes a one-dimensional postgres text[] literal. Author
// names never contain quotes or braces, so the simple split is enough.
func parseTextArray(raw []byte) []string {
	s := string(raw)
	if len(s) < 2 || s == "{}" {
		return nil
	}
	s = s[1 : len(s)-1]
	var out []string
	for _, part := range splitComma(s) {
		if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			part = part[1 : len(part)-1]
		}
		out = append(out, part)
	}
	return out
}

func splitComma(s string) []string {
	var out []string
	start := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func (r *repo) Exists(ctx context.Context, id string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM book_titles WHERE id = $1)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ok)
	return ok, err
}
