// Package bookcopy owns the physical-copy inventory and its status state
// machine. Status transitions are gated twice: a per-role policy, then the
// role-independent consistency rules against open borrow transactions.
package bookcopy

import (
	"context"
	"database/sql"
	"errors"

	"github.com/honguyenminh/is216-library-manager/model"
	"github.com/honguyenminh/is216-library-manager/util/apperr"
	"github.com/honguyenminh/is216-library-manager/util/database"
)

// View is a copy enriched with catalog metadata and, while BORROWED, the
// current borrower resolved through the open transaction.
type View struct {
	model.BookCopy
	BookTitle    string `json:"book_title"`
	BookPhotoURL string `json:"book_photo_url"`
	BookPrice    int64  `json:"book_price"`
	BorrowerID   string `json:"borrower_id,omitempty"`
	BorrowerName string `json:"borrower_name,omitempty"`
}

type Repo interface {
	Get(ctx context.Context, id string) (*model.BookCopy, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.BookCopy, error)
	ListAll(ctx context.Context) ([]model.BookCopy, error)
	InsertBatch(ctx context.Context, tx *sql.Tx, titleID string, n int, cond model.BookCopyCondition) ([]model.BookCopy, error)
	Update(ctx context.Context, tx *sql.Tx, c *model.BookCopy) error
	Delete(ctx context.Context, id string) error
}

type TxnRepo interface {
	OpenByCopy(ctx context.Context, copyID string) ([]model.Transaction, error)
	OpenByCopyTx(ctx context.Context, tx *sql.Tx, copyID string) ([]model.Transaction, error)
}

type UserRepo interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

type TitleRepo interface {
	Get(ctx context.Context, id string) (*model.BookTitle, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type Service interface {
	Get(ctx context.Context, id string) (*View, error)
	ListAll(ctx context.Context) ([]View, error)

	// CreateCopies adds a batch of copies for a title, AVAILABLE with the
	// given condition (NEW when absent).
	CreateCopies(ctx context.Context, titleID string, quantity int, cond *model.BookCopyCondition) ([]View, error)

	Delete(ctx context.Context, id string) error

	// UpdateStatus validates and applies a status (and optional condition)
	// change under the caller's role.
	UpdateStatus(ctx context.Context, id, callerID string, status model.BookCopyStatus, cond *model.BookCopyCondition) (*View, error)
}

type service struct {
	tm database.TxManager
	r  Repo
	tx TxnRepo
	ur UserRepo
	tr TitleRepo
}

func New(tm database.TxManager, r Repo, txns TxnRepo, ur UserRepo, tr TitleRepo) Service {
	return &service{tm: tm, r: r, tx: txns, ur: ur, tr: tr}
}

// statusPolicy is the per-role gate on a status change, before the
// role-independent consistency rules.
type statusPolicy func(current, target model.BookCopyStatus) error

var statusPolicies = map[model.UserRole]statusPolicy{
	model.RoleAdmin: func(current, target model.BookCopyStatus) error {
		return nil
	},
	model.RoleLibrarian: func(current, target model.BookCopyStatus) error {
		if current != target && current == model.CopyBorrowed {
			return apperr.Validation("librarians cannot change status while borrowed")
		}
		return nil
	},
}

func (s *service) UpdateStatus(ctx context.Context, id, callerID string, status model.BookCopyStatus, cond *model.BookCopyCondition) (*View, error) {
	var updated *model.BookCopy
	err := s.tm.InTx(ctx, func(tx *sql.Tx) error {
		copy, err := s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("book copy not found")
		}
		if err != nil {
			return err
		}

		caller, err := s.ur.Get(ctx, callerID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("user not found")
		}
		if err != nil {
			return err
		}

		if err := s.validateStatusChange(ctx, tx, copy, status, caller.Role); err != nil {
			return err
		}

		copy.Status = status
		if cond != nil {
			copy.Condition = *cond
		}
		if err := s.r.Update(ctx, tx, copy); err != nil {
			return err
		}
		updated = copy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, updated)
}

func (s *service) validateStatusChange(ctx context.Context, tx *sql.Tx, copy *model.BookCopy, target model.BookCopyStatus, role model.UserRole) error {
	policy, ok := statusPolicies[role]
	if !ok {
		return apperr.PermissionDenied("role is not allowed to update book copies")
	}
	if err := policy(copy.Status, target); err != nil {
		return err
	}

	// Consistency rules below bind every role, ADMIN included.
	if target == model.CopyBorrowed {
		open, err := s.tx.OpenByCopyTx(ctx, tx, copy.ID)
		if err != nil {
			return err
		}
		if len(open) == 0 {
			return apperr.Validation("cannot set status to BORROWED without an active transaction")
		}
	}

	if copy.Status == model.CopyBorrowed && target != model.CopyBorrowed {
		open, err := s.tx.OpenByCopyTx(ctx, tx, copy.ID)
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return apperr.Validation("cannot change status from BORROWED while there are active transactions, return the book first")
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*View, error) {
	copy, err := s.r.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("book copy not found")
	}
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, copy)
}

func (s *service) ListAll(ctx context.Context) ([]View, error) {
	copies, err := s.r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(copies))
	for i := range copies {
		v, err := s.buildView(ctx, &copies[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *service) CreateCopies(ctx context.Context, titleID string, quantity int, cond *model.BookCopyCondition) ([]View, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}
	ok, err := s.tr.Exists(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("book title not found")
	}

	condition := model.ConditionNew
	if cond != nil {
		condition = *cond
	}

	var copies []model.BookCopy
	err = s.tm.InTx(ctx, func(tx *sql.Tx) error {
		copies, err = s.r.InsertBatch(ctx, tx, titleID, quantity, condition)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(copies))
	for i := range copies {
		v, err := s.buildView(ctx, &copies[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	err := s.r.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("book copy not found")
	}
	return err
}

func (s *service) buildView(ctx context.Context, copy *model.BookCopy) (*View, error) {
	v := &View{BookCopy: *copy}

	title, err := s.tr.Get(ctx, copy.BookTitleID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if title != nil {
		v.BookTitle = title.Title
		v.BookPhotoURL = title.ImageURL
		v.BookPrice = title.Price
	}

	if copy.Status == model.CopyBorrowed {
		open, err := s.tx.OpenByCopy(ctx, copy.ID)
		if err != nil {
			return nil, err
		}
		if len(open) > 0 {
			borrower, err := s.ur.Get(ctx, open[0].UserID)
			if err == nil {
				v.BorrowerID = borrower.ID
				v.BorrowerName = borrower.Name
			} else if !errors.Is(err, sql.ErrNoRows) {
				return nil, err
			}
		}
	}
	return v, nil
}
