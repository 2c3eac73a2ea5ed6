package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/repository"
	"github.com/camden-git/seeds/slug"
	"gorm.io/gorm"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConflict   ErrorType = "CONFLICT"
	ErrTypeInternal   ErrorType = "INTERNAL"
)

// Error is returned by every service operation that fails.
type Error struct {
	Type      ErrorType
	Operation string
	Field     string
	Message   string
	// Fields holds one message per offending input field, validation only
	Fields map[string]string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error in %s: %s (caused by: %v)", e.Type, e.Operation, msg, e.Cause)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.Operation, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, field, msg string) *Error {
	return &Error{
		Type:      ErrTypeValidation,
		Operation: operation,
		Field:     field,
		Message:   msg,
		Fields:    map[string]string{field: msg},
	}
}

// newFieldsError reports several field problems at once. Field and Message
// carry the alphabetically first one.
func newFieldsError(operation string, fields map[string]string) *Error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Error{
		Type:      ErrTypeValidation,
		Operation: operation,
		Field:     names[0],
		Message:   fields[names[0]],
		Fields:    fields,
	}
}

func NewNotFoundError(operation, what string) *Error {
	return &Error{Type: ErrTypeNotFound, Operation: operation, Message: what + " not found"}
}

func NewConflictError(operation, msg string, cause error) *Error {
	return &Error{Type: ErrTypeConflict, Operation: operation, Message: msg, Cause: cause}
}

// TypeOf returns the kind of err, INTERNAL for anything not raised here.
func TypeOf(err error) ErrorType {
	var se *Error
	if errors.As(err, &se) {
		return se.Type
	}
	return ErrTypeInternal
}

func IsValidation(err error) bool { return TypeOf(err) == ErrTypeValidation }
func IsNotFound(err error) bool   { return TypeOf(err) == ErrTypeNotFound }
func IsConflict(err error) bool   { return TypeOf(err) == ErrTypeConflict }

// classify turns a repository failure into an Error. what names the record for not-found messages.
func classify(operation, what string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFoundError(operation, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewConflictError(operation, "a concurrent write claimed the same identifier, try again", err)
	case errors.Is(err, slug.ErrExhausted):
		return NewConflictError(operation, "could not find a free slug", err)
	case errors.Is(err, repository.ErrSelfPartner):
		return NewValidationError(operation, "partner", "a person cannot be their own partner")
	case errors.Is(err, models.ErrLiveSeed):
		return NewValidationError(operation, "mode", err.Error())
	}
	return &Error{Type: ErrTypeInternal, Operation: operation, Message: "unexpected failure", Cause: err}
}
