package service

import "errors"

var (
	// ErrInvalidInput marks a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password; callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrIndexOutOfRange    = errors.New("event index out of range")
)
