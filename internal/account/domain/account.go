package domain

import (
	"errors"
	"time"
)

// Account is an operator account. Email is stored normalized (trimmed,
// lower-cased) and is the credential lookup key. PasswordHash is written
// only by the account service's create/update/reset operations.
type Account struct {
	ID            string
	Email         string
	Name          string
	ContactNumber string
	RoleID        int
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate validates the account for persistence. Returns an error
// describing the first validation failure.
func (a *Account) Validate() error {
	if a.Email == "" {
		return errors.New("email is required")
	}
	if a.Name == "" {
		return errors.New("name is required")
	}
	if a.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
