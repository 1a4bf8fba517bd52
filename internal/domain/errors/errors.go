package errors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInvalidTransition   = errors.New("invalid lifecycle transition")
	ErrTerminalState       = errors.New("order is in terminal state")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrConflict            = errors.New("concurrent modification")
	ErrValidation          = errors.New("invalid input")
	ErrTooLarge            = errors.New("file too large")
	ErrUnsupportedType     = errors.New("unsupported file type")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
