package domain

import (
	"errors"
	"time"
)

// User is the core identity record. HashedPassword is opaque and never
// exposed outside the service; IsActive false means permanently disabled
// (logical delete, the row is never removed).
type User struct {
	ID             int64
	Username       string
	Email          string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.HashedPassword == "" {
		return errors.New("hashed password is required")
	}
	return nil
}
