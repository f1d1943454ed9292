package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrMissingColumn   = errors.New("required column missing")
	ErrMissingSheet    = errors.New("sheet not found")
	ErrEmptyInput      = errors.New("empty input")
	ErrInvalidKeywords = errors.New("invalid keyword group")

	// Resource errors
	ErrRowLimitExceeded     = errors.New("generated row limit exceeded")
	ErrReferenceUnavailable = errors.New("region reference unavailable")
)

// Error constructors with context
func NewMissingColumnError(sheet, column string) error {
	return fmt.Errorf("%w: sheet %q has no column %q", ErrMissingColumn, sheet, column)
}

func NewMissingSheetError(sheet string) error {
	return fmt.Errorf("%w: %q", ErrMissingSheet, sheet)
}

func NewEmptyInputWarning(reason string) error {
	return fmt.Errorf("%w: %s", ErrEmptyInput, reason)
}

func NewRowLimitError(expected uint64, limit int) error {
	return fmt.Errorf("%w: %d rows requested, limit is %d", ErrRowLimitExceeded, expected, limit)
}

func NewReferenceUnavailableError(err error) error {
	return fmt.Errorf("%w: %w", ErrReferenceUnavailable, err)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrMissingSheet) ||
		errors.Is(err, ErrInvalidKeywords)
}

func IsEmptyInput(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}

func IsRowLimitError(err error) bool {
	return errors.Is(err, ErrRowLimitExceeded)
}

func IsReferenceUnavailable(err error) bool {
	return errors.Is(err, ErrReferenceUnavailable)
}
