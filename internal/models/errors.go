package models

import (
	"errors"
	"fmt"
)

var (
	// ErrTodoNotFound はTODOが見つからない場合のエラーです。
	ErrTodoNotFound = errors.New("todo not found")
	// ErrInvalidID はIDの形式がストアの想定と異なる場合のエラーです。
	ErrInvalidID = errors.New("invalid todo id")
	// ErrValidation は入力値が不正な場合のエラーです。
	ErrValidation = errors.New("validation error")
)

// ValidationError はどのフィールドが不正だったかを保持します。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError は単一フィールドのValidationErrorを作成します。
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
