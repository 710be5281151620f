// model/user.go
package model

import "time"

type UserRole string

const (
	RoleUser      UserRole = "USER"
	RoleLibrarian UserRole = "LIBRARIAN"
	RoleAdmin     UserRole = "ADMIN"
)

// IsStaff reports whether the role may act on other users' records.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleLibrarian
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         UserRole  `json:"role"`
	Balance      int64     `json:"balance"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
