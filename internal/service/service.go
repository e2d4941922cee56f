// Package service provides business logic for the application.
package service

import (
	"errors"

	"github.com/oklog/ulid/v2"
)

// Service errors.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("no authenticated user")
)

func newID() string {
	return ulid.Make().String()
}
