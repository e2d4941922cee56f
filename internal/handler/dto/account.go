// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// CredentialsRequest is the body of signup and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the error envelope written by handlers.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
