package models

import "time"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is an administrator account of the pass portal.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
