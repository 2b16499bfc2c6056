package auth

import "time"

// User represents an account in the credential store.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
