package services

import (
	"errors"
	"fmt"

	"rukami/internal/repositories"
)

// Errors returned by services. Callers match them with errors.Is;
// the HTTP layer maps each one to a status code.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// translate maps repository errors onto service errors, keeping what as context.
// Unknown errors pass through untouched.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrConflict, what)
	default:
		return err
	}
}
