package account

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("account: not found")
	ErrValidation = errors.New("account: invalid input")

	// ErrEmailTaken is a validation failure: registration is rejected
	// before any token is created.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrValidation)

	ErrTokenInvalid = errors.New("account: token invalid")
	ErrTokenExpired = errors.New("account: token expired")

	// ErrAuthentication is deliberately uniform: unknown email,
	// inactive user and wrong password all surface identically.
	ErrAuthentication = errors.New("account: authentication failed")
)
