package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionError(t *testing.T) {
	tests := []struct {
		name       string
		questionID string
		operation  string
		err        error
		wantMsg    string
	}{
		{
			name:       "missing metadata",
			questionID: "q1",
			operation:  "aggregate",
			err:        ErrMissingMetadata,
			wantMsg:    "question q1: aggregate: missing required question metadata",
		},
		{
			name:       "unsupported type",
			questionID: "q7",
			operation:  "dispatch",
			err:        ErrUnsupportedType,
			wantMsg:    "question q7: dispatch: unsupported question type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewQuestionError(tt.questionID, tt.operation, tt.err)

			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.questionID, err.QuestionID)
			assert.Equal(t, tt.operation, err.Operation)
			assert.True(t, errors.Is(err, tt.err), "Should unwrap to underlying error")
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("Question")
		err.AddError("id is required")

		assert.Equal(t, "validation error for Question: id is required", err.Error())
		assert.True(t, err.HasErrors())
		assert.Len(t, err.Errors, 1)
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("EngineConfig")
		err.AddError("concurrency out of range")
		err.AddError("sentinels must differ")

		assert.Contains(t, err.Error(), "validation errors for EngineConfig")
		assert.Len(t, err.Errors, 2)
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("Config")

		assert.False(t, err.HasErrors())
		assert.Empty(t, err.Errors)
	})
}

func TestCommonDomainErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrMissingMetadata, "missing required question metadata"},
		{ErrUnsupportedType, "unsupported question type"},
		{ErrInvalidQuestion, "invalid question definition"},
		{ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}
