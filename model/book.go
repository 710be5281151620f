// model/book.go
package model

type BookTitle struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	ImageURL              string   `json:"image_url"`
	Price                 int64    `json:"price"`
	CanBorrow             bool     `json:"can_borrow"`
	MaxOnlineReservations int      `json:"max_online_reservations"`
	Authors               []string `json:"authors"`
}

type BookCopyStatus string

const (
	CopyAvailable BookCopyStatus = "AVAILABLE"
	CopyBorrowed  BookCopyStatus = "BORROWED"
	CopyDamaged   BookCopyStatus = "DAMAGED"
	CopyLost      BookCopyStatus = "LOST"
)

type BookCopyCondition string

const (
	ConditionNew     BookCopyCondition = "NEW"
	ConditionGood    BookCopyCondition = "GOOD"
	ConditionWorn    BookCopyCondition = "WORN"
	ConditionDamaged BookCopyCondition = "DAMAGED"
)

type BookCopy struct {
	ID          string            `json:"id"`
	BookTitleID string            `json:"book_title_id"`
	Status      BookCopyStatus    `json:"status"`
	Condition   BookCopyCondition `json:"condition"`
}
