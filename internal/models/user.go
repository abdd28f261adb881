package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func IsValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
