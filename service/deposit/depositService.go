// Package deposit exposes the balance ledger and manual credits taken in
// cash at the circulation desk.
package deposit

import (
	"context"
	"database/sql"
	"errors"

	"github.com/honguyenminh/is216-library-manager/model"
	"github.com/honguyenminh/is216-library-manager/util/apperr"
	"github.com/honguyenminh/is216-library-manager/util/database"
)

type UserRepo interface {
	Get(ctx context.Context, id string) (*model.User, error)
	CreditDeposit(ctx context.Context, tx *sql.Tx, userID string, amount int64, reservationID *string, entry model.LedgerType) error
	ListLedger(ctx context.Context, userID string) ([]model.DepositLedger, error)
}

type Service interface {
	Ledger(ctx context.Context, userID string) ([]model.DepositLedger, error)

	// Credit adds funds to a user's balance. Staff only.
	Credit(ctx context.Context, callerID, userID string, amount int64) error
}

type service struct {
	tm database.TxManager
	ur UserRepo
}

func New(tm database.TxManager, ur UserRepo) Service { return &service{tm: tm, ur: ur} }

func (s *service) Ledger(ctx context.Context, userID string) ([]model.DepositLedger, error) {
	return s.ur.ListLedger(ctx, userID)
}

func (s *service) Credit(ctx context.Context, callerID, userID string, amount int64) error {
	if amount <= 0 {
		return apperr.Validation("credit amount must be positive")
	}

	caller, err := s.ur.Get(ctx, callerID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return err
	}
	if !caller.Role.IsStaff() {
		return apperr.PermissionDenied("only staff can credit balances")
	}

	if _, err := s.ur.Get(ctx, userID); errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("user not found")
	} else if err != nil {
		return err
	}

	return s.tm.InTx(ctx, func(tx *sql.Tx) error {
		return s.ur.CreditDeposit(ctx, tx, userID, amount, nil, model.LedgerManualCredit)
	})
}
