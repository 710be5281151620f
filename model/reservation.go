// model/reservation.go
package model

import "time"

// ReservationHoldDays is the length of the hold window. The expiration date
// is always the reservation date plus this many days.
const ReservationHoldDays = 7

// MaxActiveReservationsPerUser caps simultaneously active reservations.
const MaxActiveReservationsPerUser = 5

type Reservation struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	BookTitleID     string    `json:"book_title_id"`
	BookCopyID      *string   `json:"book_copy_id,omitempty"`
	ReservationDate time.Time `json:"reservation_date"`
	ExpirationDate  time.Time `json:"expiration_date"`
	Deposit         int64     `json:"deposit"`
}

// Active reports whether the reservation still holds its slot on the given
// calendar date. Expiration day itself still counts as active.
func (r *Reservation) Active(today time.Time) bool {
	return !r.ExpirationDate.Before(today)
}

// Expired is the complement of Active.
func (r *Reservation) Expired(today time.Time) bool {
	return r.ExpirationDate.Before(today)
}

// DepositFor computes the deposit for a book price: 10% integer-truncated.
// The value is a snapshot taken at creation; it is never re-derived later.
func DepositFor(price int64) int64 { return price / 10 }
