package service

import "errors"

// Sentinel errors that handlers map to HTTP status codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrOTPExpired          = errors.New("code expired")
	ErrOTPAttemptsExceeded = errors.New("too many incorrect attempts")
)
