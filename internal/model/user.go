// Package model defines domain entities for the application.
package model

import "time"

// User is an account holder. Email is immutable after signup.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
