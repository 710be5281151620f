package bookcopy

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/honguyenminh/is216-library-manager/model"
	"github.com/honguyenminh/is216-library-manager/util/apperr"
)

type tmStub struct{}

func (tmStub) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error { return fn(nil) }

type copyRepoMock struct {
	getFn func(id string) (*model.BookCopy, error)

	updated *model.BookCopy
	deleted []string
}

func (m *copyRepoMock) Get(ctx context.Context, id string) (*model.BookCopy, error) {
	if m.getFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.getFn(id)
}

func (m *copyRepoMock) GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.BookCopy, error) {
	return m.Get(ctx, id)
}

func (m *copyRepoMock) ListAll(ctx context.Context) ([]model.BookCopy, error) { return nil, nil }

func (m *copyRepoMock) InsertBatch(ctx context.Context, tx *sql.Tx, titleID string, n int, cond model.BookCopyCondition) ([]model.BookCopy, error) {
	out := make([]model.BookCopy, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.BookCopy{
			ID:          uuid.NewString(),
			BookTitleID: titleID,
			Status:      model.CopyAvailable,
			Condition:   cond,
		})
	}
	return out, nil
}

func (m *copyRepoMock) Update(ctx context.Context, tx *sql.Tx, c *model.BookCopy) error {
	cp := *c
	m.updated = &cp
	return nil
}

func (m *copyRepoMock) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type txnRepoMock struct {
	openFn func(copyID string) ([]model.Transaction, error)
}

func (m *txnRepoMock) OpenByCopy(ctx context.Context, copyID string) ([]model.Transaction, error) {
	if m.openFn == nil {
		return nil, nil
	}
	return m.openFn(copyID)
}

func (m *txnRepoMock) OpenByCopyTx(ctx context.Context, tx *sql.Tx, copyID string) ([]model.Transaction, error) {
	return m.OpenByCopy(ctx, copyID)
}

type userRepoMock struct {
	getFn func(id string) (*model.User, error)
}

func (m *userRepoMock) Get(ctx context.Context, id string) (*model.User, error) {
	if m.getFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.getFn(id)
}

type titleRepoMock struct {
	getFn    func(id string) (*model.BookTitle, error)
	existsFn func(id string) (bool, error)
}

func (m *titleRepoMock) Get(ctx context.Context, id string) (*model.BookTitle, error) {
	if m.getFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.getFn(id)
}

func (m *titleRepoMock) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFn == nil {
		return false, nil
	}
	return m.existsFn(id)
}

type fixture struct {
	svc *service
	r   *copyRepoMock
	tx  *txnRepoMock
	ur  *userRepoMock
	tr  *titleRepoMock
}

func newFixture() *fixture {
	f := &fixture{
		r:  &copyRepoMock{},
		tx: &txnRepoMock{},
		ur: &userRepoMock{},
		tr: &titleRepoMock{},
	}
	f.svc = &service{tm: tmStub{}, r: f.r, tx: f.tx, ur: f.ur, tr: f.tr}
	return f
}

func (f *fixture) withCopy(status model.BookCopyStatus) {
	f.r.getFn = func(id string) (*model.BookCopy, error) {
		return &model.BookCopy{ID: id, BookTitleID: "t1", Status: status, Condition: model.ConditionGood}, nil
	}
	f.tr.getFn = func(id string) (*model.BookTitle, error) {
		return &model.BookTitle{ID: id, Title: "Clean Architecture", ImageURL: "https://img.example/ca.jpg", Price: 120}, nil
	}
}

func (f *fixture) withCaller(role model.UserRole) {
	f.ur.getFn = func(id string) (*model.User, error) {
		return &model.User{ID: id, Name: "staff", Role: role}, nil
	}
}

func (f *fixture) withOpenTxns(n int) {
	f.tx.openFn = func(copyID string) ([]model.Transaction, error) {
		out := make([]model.Transaction, n)
		for i := range out {
			out[i] = model.Transaction{ID: "x1", UserID: "borrower-1", BookCopyID: copyID}
		}
		return out, nil
	}
}

// --- status transition matrix ---

func TestUpdateStatus_Matrix(t *testing.T) {
	cases := []struct {
		name     string
		role     model.UserRole
		current  model.BookCopyStatus
		target   model.BookCopyStatus
		openTxns int
		wantKind apperr.Kind // empty means allowed
	}{
		{"librarian available to damaged", model.RoleLibrarian, model.CopyAvailable, model.CopyDamaged, 0, ""},
		{"librarian available to lost", model.RoleLibrarian, model.CopyAvailable, model.CopyLost, 0, ""},
		{"librarian borrowed to available blocked", model.RoleLibrarian, model.CopyBorrowed, model.CopyAvailable, 1, apperr.KindValidation},
		{"librarian borrowed to lost blocked", model.RoleLibrarian, model.CopyBorrowed, model.CopyLost, 1, apperr.KindValidation},
		{"librarian borrowed unchanged", model.RoleLibrarian, model.CopyBorrowed, model.CopyBorrowed, 1, ""},
		{"admin borrowed to lost with open txn blocked", model.RoleAdmin, model.CopyBorrowed, model.CopyLost, 1, apperr.KindValidation},
		{"admin borrowed to available after return", model.RoleAdmin, model.CopyBorrowed, model.CopyAvailable, 0, ""},
		{"admin available to borrowed without txn blocked", model.RoleAdmin, model.CopyAvailable, model.CopyBorrowed, 0, apperr.KindValidation},
		{"librarian available to borrowed without txn blocked", model.RoleLibrarian, model.CopyAvailable, model.CopyBorrowed, 0, apperr.KindValidation},
		{"admin available to borrowed with txn", model.RoleAdmin, model.CopyAvailable, model.CopyBorrowed, 1, ""},
		{"regular user blocked", model.RoleUser, model.CopyAvailable, model.CopyDamaged, 0, apperr.KindPermissionDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.withCopy(tc.current)
			f.withCaller(tc.role)
			f.withOpenTxns(tc.openTxns)
			if tc.openTxns > 0 {
				f.ur.getFn = func(id string) (*model.User, error) {
					if id == "borrower-1" {
						return &model.User{ID: id, Name: "borrower", Role: model.RoleUser}, nil
					}
					return &model.User{ID: id, Name: "staff", Role: tc.role}, nil
				}
			}

			view, err := f.svc.UpdateStatus(context.Background(), "c1", "caller", tc.target, nil)
			if tc.wantKind == "" {
				require.NoError(t, err)
				require.Equal(t, tc.target, view.Status)
				require.NotNil(t, f.r.updated)
			} else {
				require.Error(t, err)
				require.Equal(t, tc.wantKind, apperr.KindOf(err), "got: %v", err)
				require.Nil(t, f.r.updated)
			}
		})
	}
}

func TestUpdateStatus_ConditionApplied(t *testing.T) {
	f := newFixture()
	f.withCopy(model.CopyAvailable)
	f.withCaller(model.RoleLibrarian)

	cond := model.ConditionWorn
	view, err := f.svc.UpdateStatus(context.Background(), "c1", "caller", model.CopyDamaged, &cond)
	require.NoError(t, err)
	require.Equal(t, model.ConditionWorn, view.Condition)
}

func TestUpdateStatus_CopyNotFound(t *testing.T) {
	f := newFixture()
	f.withCaller(model.RoleAdmin)

	_, err := f.svc.UpdateStatus(context.Background(), "missing", "caller", model.CopyLost, nil)
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// --- views ---

func TestGet_BorrowedShowsBorrower(t *testing.T) {
	f := newFixture()
	f.withCopy(model.CopyBorrowed)
	f.withOpenTxns(1)
	f.ur.getFn = func(id string) (*model.User, error) {
		return &model.User{ID: id, Name: "Alice Tran", Role: model.RoleUser}, nil
	}

	view, err := f.svc.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "borrower-1", view.BorrowerID)
	require.Equal(t, "Alice Tran", view.BorrowerName)
	require.Equal(t, "Clean Architecture", view.BookTitle)
}

func TestGet_AvailableHasNoBorrower(t *testing.T) {
	f := newFixture()
	f.withCopy(model.CopyAvailable)

	view, err := f.svc.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.Empty(t, view.BorrowerID)
}

// --- create ---

func TestCreateCopies(t *testing.T) {
	f := newFixture()
	f.tr.existsFn = func(id string) (bool, error) { return true, nil }
	f.tr.getFn = func(id string) (*model.BookTitle, error) {
		return &model.BookTitle{ID: id, Title: "SICP"}, nil
	}

	views, err := f.svc.CreateCopies(context.Background(), "t1", 3, nil)
	require.NoError(t, err)
	require.Len(t, views, 3)
	seen := map[string]bool{}
	for _, v := range views {
		require.Equal(t, model.CopyAvailable, v.Status)
		require.Equal(t, model.ConditionNew, v.Condition)
		require.False(t, seen[v.ID], "copy ids must be unique")
		seen[v.ID] = true
	}
}

func TestCreateCopies_BadQuantity(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateCopies(context.Background(), "t1", 0, nil)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateCopies_UnknownTitle(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateCopies(context.Background(), "nope", 2, nil)
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDelete(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.svc.Delete(context.Background(), "c1"))
	require.Equal(t, []string{"c1"}, f.r.deleted)
}
