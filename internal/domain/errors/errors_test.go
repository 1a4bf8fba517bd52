package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not found", ErrNotFound},
		{"already exists", ErrAlreadyExists},
		{"invalid transition", ErrInvalidTransition},
		{"terminal state", ErrTerminalState},
		{"forbidden", ErrForbidden},
		{"unauthorized", ErrUnauthorized},
		{"conflict", ErrConflict},
		{"validation", ErrValidation},
		{"too large", ErrTooLarge},
		{"unsupported type", ErrUnsupportedType},
		{"upstream unavailable", ErrUpstreamUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
			wrapped := fmt.Errorf("order abc: %w", tc.err)
			if !stdErrors.Is(wrapped, tc.err) {
				t.Fatalf("expected wrapped error to match sentinel: %v", wrapped)
			}
		})
	}
}
