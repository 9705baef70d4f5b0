package entity

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID            int64      `json:"id" db:"id"`
	Username      string     `json:"username" db:"username"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	Role          Role       `json:"role" db:"role"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastBookingAt *time.Time `json:"last_booking_at,omitempty" db:"last_booking_at"`
}

// IsAdmin проверяет, есть ли у пользователя права администратора
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
