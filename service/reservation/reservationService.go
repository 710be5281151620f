// Package reservation implements the reservation lifecycle: time-bounded
// holds on book titles, deposit accounting against user balances, role-gated
// mutation, copy assignment at pickup, and expiry cleanup.
package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/honguyenminh/is216-library-manager/model"
	userrepo "github.com/honguyenminh/is216-library-manager/repository/user"
	"github.com/honguyenminh/is216-library-manager/service/scheduler"
	"github.com/honguyenminh/is216-library-manager/util/apperr"
	"github.com/honguyenminh/is216-library-manager/util/database"
)

// View is a reservation enriched with catalog metadata for presentation.
type View struct {
	model.Reservation
	BookTitle    string   `json:"book_title"`
	BookImageURL string   `json:"book_image_url"`
	BookAuthors  []string `json:"book_authors"`
}

// UpdateFields carries the caller-mutable fields. Deposit and the two dates
// are derived at creation and never updatable.
type UpdateFields struct {
	BookTitleID *string
	// BookCopyID set to the empty string unbinds the copy.
	BookCopyID *string
}

type Repo interface {
	Get(ctx context.Context, id string) (*model.Reservation, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Reservation, error)
	ListActiveByUser(ctx context.Context, tx *sql.Tx, userID string, today time.Time) ([]model.Reservation, error)
	CountActiveByTitle(ctx context.Context, tx *sql.Tx, titleID string, today time.Time) (int, error)
	Insert(ctx context.Context, tx *sql.Tx, r *model.Reservation) error
	Update(ctx context.Context, tx *sql.Tx, r *model.Reservation) error
	Delete(ctx context.Context, tx *sql.Tx, id string) error
}

type UserRepo interface {
	Get(ctx context.Context, id string) (*model.User, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.User, error)
	DebitDeposit(ctx context.Context, tx *sql.Tx, userID string, amount int64, reservationID *string) error
	CreditDeposit(ctx context.Context, tx *sql.Tx, userID string, amount int64, reservationID *string, entry model.LedgerType) error
}

type TitleRepo interface {
	Get(ctx context.Context, id string) (*model.BookTitle, error)
	GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.BookTitle, error)
}

type CopyRepo interface {
	PickAvailableForUpdate(ctx context.Context, tx *sql.Tx, titleID string) (string, error)
	SetStatus(ctx context.Context, tx *sql.Tx, id string, status model.BookCopyStatus) error
}

type Service interface {
	Get(ctx context.Context, id, callerID string) (*View, error)
	ListAll(ctx context.Context) ([]View, error)
	ListByUser(ctx context.Context, userID string) ([]View, error)

	// Create places a hold for the user on a book title: validates the
	// eligibility rules, debits the deposit, persists the reservation and
	// schedules its expiry, all in one transaction.
	Create(ctx context.Context, userID, bookTitleID string) (*View, error)

	Update(ctx context.Context, id, callerID string, f UpdateFields) (*View, error)

	// Delete cancels an active reservation (refund deposit, free copy, drop
	// the expiry job) before removing it. An expired reservation is removed
	// without a refund; its refund already happened during cleanup.
	Delete(ctx context.Context, id, callerID string) error

	// AssignBookCopy binds the first free physical copy of the reserved title
	// at pickup time. The copy status itself does not change; assignment only
	// binds identity.
	AssignBookCopy(ctx context.Context, id string) (*View, error)

	// CleanupExpired is the expiry callback. It is idempotent: a reservation
	// that is gone or no longer expired is a no-op.
	CleanupExpired(ctx context.Context, id string) error
}

type service struct {
	tm    database.TxManager
	r     Repo
	ur    UserRepo
	tr    TitleRepo
	cr    CopyRepo
	sched scheduler.Scheduler

	now func() time.Time
}

func New(tm database.TxManager, r Repo, ur UserRepo, tr TitleRepo, cr CopyRepo, sched scheduler.Scheduler) Service {
	return &service{tm: tm, r: r, ur: ur, tr: tr, cr: cr, sched: sched, now: time.Now}
}

// today is the UTC calendar date, read once per operation.
func (s *service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *service) Get(ctx context.Context, id, callerID string) (*View, error) {
	res, err := s.r.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("reservation not found")
	}
	if err != nil {
		return nil, err
	}

	caller, err := s.ur.Get(ctx, callerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	if res.UserID != callerID && !caller.Role.IsStaff() {
		return nil, apperr.PermissionDenied("you do not have permission to view this reservation")
	}

	return s.enrich(ctx, res)
}

func (s *service) ListAll(ctx context.Context) ([]View, error) {
	list, err := s.r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrichAll(ctx, list)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]View, error) {
	list, err := s.r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrichAll(ctx, list)
}

func (s *service) Create(ctx context.Context, userID, bookTitleID string) (*View, error) {
	today := s.today()

	var view *View
	err := s.tm.InTx(ctx, func(tx *sql.Tx) error {
		user, err := s.ur.GetForUpdate(ctx, tx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("user not found")
		}
		if err != nil {
			return err
		}

		title, err := s.tr.GetTx(ctx, tx, bookTitleID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("book title not found")
		}
		if err != nil {
			return err
		}

		deposit := model.DepositFor(title.Price)
		if err := s.validateCreate(ctx, tx, userID, title, deposit, today); err != nil {
			return err
		}
		if user.Balance < deposit {
			return apperr.Validation(fmt.Sprintf("not enough balance to reserve, required deposit: %d", deposit))
		}

		res := &model.Reservation{
			UserID:          userID,
			BookTitleID:     bookTitleID,
			BookCopyID:      nil, // assigned at pickup
			ReservationDate: today,
			ExpirationDate:  today.AddDate(0, 0, model.ReservationHoldDays),
			Deposit:         deposit,
		}
		if err := s.r.Insert(ctx, tx, res); err != nil {
			return err
		}

		if err := s.ur.DebitDeposit(ctx, tx, userID, deposit, &res.ID); err != nil {
			if errors.Is(err, userrepo.ErrInsufficientBalance) {
				return apperr.Validation(fmt.Sprintf("not enough balance to reserve, required deposit: %d", deposit))
			}
			return err
		}

		// The job row commits or rolls back together with the reservation.
		// Fires at the start of the first expired day; the expiration day
		// itself still counts as active.
		if err := s.sched.ScheduleExpiry(ctx, tx, res.ID, res.ExpirationDate.AddDate(0, 0, 1)); err != nil {
			return err
		}

		view = newView(res, title)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// validateCreate runs the eligibility rules against one consistent read of
// today, before any mutation.
func (s *service) validateCreate(ctx context.Context, tx *sql.Tx, userID string, title *model.BookTitle, deposit int64, today time.Time) error {
	active, err := s.r.ListActiveByUser(ctx, tx, userID, today)
	if err != nil {
		return err
	}
	if len(active) >= model.MaxActiveReservationsPerUser {
		return apperr.Validation("max active reservations reached")
	}
	for _, a := range active {
		if a.BookTitleID == title.ID {
			return apperr.Validation("already reserved this book")
		}
	}

	if !title.CanBorrow {
		return apperr.Validation("this book title cannot be reserved")
	}

	titleActive, err := s.r.CountActiveByTitle(ctx, tx, title.ID, today)
	if err != nil {
		return err
	}
	if titleActive >= title.MaxOnlineReservations {
		return apperr.Validation("no more online reservation slots available for this book")
	}

	// Deposit is derived, so this should be unreachable.
	if deposit < 0 {
		return apperr.Validation("deposit cannot be negative")
	}
	return nil
}

func (s *service) Update(ctx context.Context, id, callerID string, f UpdateFields) (*View, error) {
	today := s.today()

	var view *View
	err := s.tm.InTx(ctx, func(tx *sql.Tx) error {
		res, err := s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("reservation not found")
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
		if res.UserID != callerID && !caller.Role.IsStaff() {
			return apperr.PermissionDenied("you do not have permission to update this reservation")
		}

		if res.Expired(today) {
			return apperr.Validation("cannot update an expired reservation")
		}

		if f.BookTitleID != nil && *f.BookTitleID != res.BookTitleID {
			if _, err := s.tr.GetTx(ctx, tx, *f.BookTitleID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperr.NotFound("book title not found")
				}
				return err
			}
			res.BookTitleID = *f.BookTitleID
		}
		if f.BookCopyID != nil {
			if *f.BookCopyID == "" {
				res.BookCopyID = nil
			} else {
				res.BookCopyID = f.BookCopyID
			}
		}

		if err := s.r.Update(ctx, tx, res); err != nil {
			return err
		}

		title, err := s.tr.GetTx(ctx, tx, res.BookTitleID)
		if err != nil {
			return err
		}
		view = newView(res, title)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Delete(ctx context.Context, id, callerID string) error {
	today := s.today()

	return s.tm.InTx(ctx, func(tx *sql.Tx) error {
		res, err := s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("reservation not found")
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
		if res.UserID != callerID && !caller.Role.IsStaff() {
			return apperr.PermissionDenied("not allowed to delete others' reservations")
		}

		if res.Active(today) {
			if err := s.cancel(ctx, tx, res); err != nil {
				return err
			}
		} else {
			// Refund already happened during expiry cleanup; just drop any
			// leftover job row.
			if err := s.sched.CancelExpiry(ctx, tx, res.ID); err != nil {
				return err
			}
		}

		return s.r.Delete(ctx, tx, id)
	})
}

func (s *service) AssignBookCopy(ctx context.Context, id string) (*View, error) {
	today := s.today()

	var view *View
	err := s.tm.InTx(ctx, func(tx *sql.Tx) error {
		res, err := s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("reservation not found")
		}
		if err != nil {
			return err
		}

		if res.Expired(today) {
			return apperr.Validation("cannot assign book copy to expired reservation")
		}

		copyID, err := s.cr.PickAvailableForUpdate(ctx, tx, res.BookTitleID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Validation("no available physical copy for pickup at this time")
		}
		if err != nil {
			return err
		}

		res.BookCopyID = &copyID
		if err := s.r.Update(ctx, tx, res); err != nil {
			return err
		}

		title, err := s.tr.GetTx(ctx, tx, res.BookTitleID)
		if err != nil {
			return err
		}
		view = newView(res, title)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) CleanupExpired(ctx context.Context, id string) error {
	today := s.today()

	return s.tm.InTx(ctx, func(tx *sql.Tx) error {
		res, err := s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil // already removed
		}
		if err != nil {
			return err
		}
		if !res.Expired(today) {
			return nil // extended or re-created meanwhile
		}

		if err := s.cancel(ctx, tx, res); err != nil {
			return err
		}
		return s.r.Delete(ctx, tx, id)
	})
}

// cancel reverses a reservation's side effects: the bound copy goes back to
// AVAILABLE, the deposit returns to the owner, and the pending expiry job is
// dropped. Runs in the same transaction as the row removal.
func (s *service) cancel(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	if res.BookCopyID != nil {
		if err := s.cr.SetStatus(ctx, tx, *res.BookCopyID, model.CopyAvailable); err != nil {
			return err
		}
	}
	if err := s.ur.CreditDeposit(ctx, tx, res.UserID, res.Deposit, &res.ID, model.LedgerDepositRefund); err != nil {
		return err
	}
	return s.sched.CancelExpiry(ctx, tx, res.ID)
}

func (s *service) enrich(ctx context.Context, res *model.Reservation) (*View, error) {
	title, err := s.tr.Get(ctx, res.BookTitleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("book title not found")
	}
	if err != nil {
		return nil, err
	}
	return newView(res, title), nil
}

func (s *service) enrichAll(ctx context.Context, list []model.Reservation) ([]View, error) {
	out := make([]View, 0, len(list))
	for i := range list {
		v, err := s.enrich(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func newView(res *model.Reservation, t *model.BookTitle) *View {
	return &View{
		Reservation:  *res,
		BookTitle:    t.Title,
		BookImageURL: t.ImageURL,
		BookAuthors:  t.Authors,
	}
}
