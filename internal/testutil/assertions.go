package testutil

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/ravi5775/v1/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAmount fails the test when two monetary values differ by more than
// a hair of float noise.
func AssertAmount(t *testing.T, want, got float64, label string) {
	t.Helper()

	if math.Abs(want-got) > 1e-9 {
		t.Errorf("expected %s %v, got %v", label, want, got)
	}
}
