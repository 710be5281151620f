// model/ledger.go
package model

import "time"

type LedgerType string

const (
	LedgerDepositCharge LedgerType = "DEPOSIT_CHARGE"
	LedgerDepositRefund LedgerType = "DEPOSIT_REFUND"
	LedgerManualCredit  LedgerType = "MANUAL_CREDIT"
)

type DepositLedger struct {
	ID            int64      `json:"id"`
	UserID        string     `json:"user_id"`
	ReservationID *string    `json:"reservation_id,omitempty"`
	EntryType     LedgerType `json:"entry_type"`
	Amount        int64      `json:"amount"`
	BalanceAfter  int64      `json:"balance_after"`
	CreatedAt     time.Time  `json:"created_at"`
}
