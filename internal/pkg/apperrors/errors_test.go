package apperrors

import (
	"errors"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("amount", "must be positive")

	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected error to match ErrValidation")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected error to unwrap to *ValidationError")
	}
	if vErr.Field != "amount" {
		t.Errorf("expected field %q, got %q", "amount", vErr.Field)
	}
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDatabaseError(cause, "query loans")

	if !errors.Is(err, ErrDatabase) {
		t.Errorf("expected error to match ErrDatabase")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected error to match the original cause")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected error to unwrap to *AppError")
	}
	if appErr.Code != "DB_ERROR" {
		t.Errorf("expected code %q, got %q", "DB_ERROR", appErr.Code)
	}
}
