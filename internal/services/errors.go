package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNonInstitutional   = errors.New("only institutional (.edu) email addresses are accepted")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email is not verified")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
)

// NeedsVerificationError is returned from Login for unverified accounts; it
// carries enough identity for the client to trigger a resend directly.
type NeedsVerificationError struct {
	UserID uint
	Email  string
	Name   string
}

func (e *NeedsVerificationError) Error() string {
	return fmt.Sprintf("user %d needs email verification", e.UserID)
}
