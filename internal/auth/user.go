package auth

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
	ErrPhoneExists    = errors.New("phone number already exists")
	ErrWrongPassword  = errors.New("wrong password")
)

// User is an account holder. The password hash never leaves the server.
type User struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         int    `json:"role"`
	PasswordHash string `json:"-"`
}

// NewUser carries the fields needed to register an account.
type NewUser struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Phone     string
	Password  string
	Role      int
}
