// model/transaction.go
package model

import "time"

// Transaction is a borrow record. A nil ReturnedDate marks the copy as
// currently out; the copy must stay BORROWED until the record is closed.
type Transaction struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	BookCopyID   string     `json:"book_copy_id"`
	BorrowDate   time.Time  `json:"borrow_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnedDate *time.Time `json:"returned_date,omitempty"`
}
