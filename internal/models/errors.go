package models

import (
	"errors"
	"fmt"
)

// ErrInvalid входные данные нарушают правила модели.
var ErrInvalid = errors.New("invalid input")

// FieldError нарушение правила для конкретного поля. Сопоставляется с ErrInvalid.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s %s", e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
