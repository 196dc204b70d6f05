package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Validation("Field username is required"), ErrInvalidInput},
		{"conflict", ErrUserAlreadyExists, ErrConflict},
		{"unauthenticated", ErrInvalidCredentials, ErrUnauthorized},
		{"not found", ErrCourseNotFound, ErrNotFound},
		{"internal", Internal("Login failed", errors.New("disk full")), ErrInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("create user: %w", ErrUserAlreadyExists)

	if !errors.Is(err, ErrConflict) {
		t.Error("wrapped error should match ErrConflict")
	}
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Error("wrapped error should match its sentinel")
	}
	if got := MessageOf(err, "fallback"); got != "Username or email already exists" {
		t.Errorf("MessageOf() = %q", got)
	}
}

func TestError_WithCause(t *testing.T) {
	cause := errors.New("constraint failed")
	err := ErrCourseCodeExists.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("error should match its cause")
	}
	if !errors.Is(err, ErrConflict) {
		t.Error("error should keep its kind")
	}
	if err.Cause() != cause {
		t.Errorf("Cause() = %v, want %v", err.Cause(), cause)
	}
	if ErrCourseCodeExists.Cause() != nil {
		t.Error("WithCause must not mutate the sentinel")
	}
}

func TestKindOf_PlainErrors(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != ErrInternalError {
		t.Errorf("KindOf(plain) = %v, want ErrInternalError", got)
	}
	if got := KindOf(fmt.Errorf("x: %w", ErrNotFound)); got != ErrNotFound {
		t.Errorf("KindOf(wrapped sentinel) = %v, want ErrNotFound", got)
	}
}

func TestMessageOf_HidesInternal(t *testing.T) {
	err := Internal("Registration failed", errors.New("pq: relation users does not exist"))
	if got := MessageOf(err, "Something went wrong"); got != "Something went wrong" {
		t.Errorf("MessageOf(internal) = %q, want fallback", got)
	}
	if got := MessageOf(errors.New("raw"), "fallback"); got != "fallback" {
		t.Errorf("MessageOf(plain) = %q, want fallback", got)
	}
}
