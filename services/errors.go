package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInsufficientCoins = errors.New("insufficient stylecoins")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrAlreadyVoted      = errors.New("user has already voted in this battle")
	ErrChallengeClosed   = errors.New("challenge is not accepting submissions")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Clock is injected so challenge windows can be tested.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}
