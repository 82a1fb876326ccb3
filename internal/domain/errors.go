package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while aggregating survey answers.
var (
	// ErrMissingMetadata indicates that a question definition lacks a shape
	// field its type requires, such as matrix rows or columns.
	ErrMissingMetadata = errors.New("missing required question metadata")

	// ErrUnsupportedType indicates that no aggregator handles a question type.
	ErrUnsupportedType = errors.New("unsupported question type")

	// ErrInvalidQuestion indicates that a question definition failed
	// structural validation.
	ErrInvalidQuestion = errors.New("invalid question definition")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// QuestionError is an error tied to a single question. The engine renders it
// into that question's processing error.
type QuestionError struct {
	// QuestionID is the id of the question that failed.
	QuestionID string

	// Operation describes what was being done when the error occurred.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for QuestionError.
func (e *QuestionError) Error() string {
	return fmt.Sprintf("question %s: %s: %v", e.QuestionID, e.Operation, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *QuestionError) Unwrap() error { return e.Err }

// NewQuestionError creates a new QuestionError with the given details.
func NewQuestionError(questionID, operation string, err error) *QuestionError {
	return &QuestionError{
		QuestionID: questionID,
		Operation:  operation,
		Err:        err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
