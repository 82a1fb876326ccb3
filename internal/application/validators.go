package application

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-tally/internal/domain"
)

// validate is shared by configuration and question validation. Validator
// instances cache struct metadata and are safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		// Registration only fails for an empty tag or a nil function.
		panic(err)
	}
	return v
}

// registerCustomValidators registers domain-specific validation functions
// with the validator instance.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("questiontype", validateQuestionType); err != nil {
		return fmt.Errorf("failed to register questiontype validator: %w", err)
	}
	return nil
}

// validateQuestionType reports whether the field holds a supported question
// type.
func validateQuestionType(fl validator.FieldLevel) bool {
	return domain.QuestionType(fl.Field().String()).IsValid()
}

// ValidateQuestion checks the structural integrity of a question definition.
// An unknown type is reported as domain.ErrUnsupportedType; every other
// failure wraps domain.ErrInvalidQuestion. Type-specific shape requirements,
// such as matrix rows, are left to the aggregators.
func ValidateQuestion(q domain.QuestionDefinition) error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuestion, err)
	}

	verr := domain.NewValidationError(fmt.Sprintf("question %q", q.ID))
	for _, fe := range fieldErrs {
		if fe.Tag() == "questiontype" {
			return fmt.Errorf("%w: %q", domain.ErrUnsupportedType, q.Type)
		}
		verr.AddError(fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidQuestion, verr)
}
