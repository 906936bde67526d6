package users

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Avatar       string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser — данные для регистрации, пароль уже захэширован.
type NewUser struct {
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
}
