package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors covering every failure class the API surfaces.

var (
	// ErrValidation indicates malformed or missing caller input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrEmbedding indicates the upstream embedding call failed.
	ErrEmbedding = errors.New("embedding request failed")

	// ErrGeneration indicates the upstream chat-completion call failed.
	ErrGeneration = errors.New("answer generation failed")

	// ErrSearchUnavailable indicates the vector extension or search function
	// is missing from the database, as opposed to a generic database failure.
	ErrSearchUnavailable = errors.New("semantic search unavailable")

	// ErrDatabaseOperation indicates a database operation failed.
	ErrDatabaseOperation = errors.New("database operation failed")
)

// WrapError wraps an error with a context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with a formatted context message.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSearchUnavailable checks if error is a search unavailable error
func IsSearchUnavailable(err error) bool {
	return errors.Is(err, ErrSearchUnavailable)
}
