package validation

import (
	"reflect"
	"strings"

	apperrors "voyageiq/pkg/errors"
)

// Schema is the rule set for one request shape. The rules live in the
// validate tags of T; the schema adds the resource name and custom messages.
// A schema is immutable once built.
type Schema[T any] struct {
	name      string
	validator *Validator
	messages  Messages
}

func NewSchema[T any](v *Validator, name string, messages Messages) *Schema[T] {
	return &Schema[T]{
		name:      name,
		validator: v,
		messages:  messages,
	}
}

func (s *Schema[T]) Name() string {
	return s.name
}

// Validate returns nil or a 400 AppError whose message joins every violation.
func (s *Schema[T]) Validate(in T) error {
	if isNil(in) {
		return apperrors.BadRequest(MsgBodyRequired)
	}
	violations, err := s.validator.Violations(in, s.messages)
	if err != nil {
		return apperrors.Internal("validation could not run", err)
	}
	return violationError(violations)
}

func violationError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return apperrors.Validation(strings.Join(violations, ", "), violations)
}

func isNil(in any) bool {
	if in == nil {
		return true
	}
	v := reflect.ValueOf(in)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
