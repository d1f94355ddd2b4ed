package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrLoad         = errors.New("load failed")
	ErrWrite        = errors.New("write failed")

	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrValidation)

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooShort   = fmt.Errorf("%w: password too short", ErrValidation)
	ErrPasswordTooLong    = fmt.Errorf("%w: password too long", ErrValidation)
)
