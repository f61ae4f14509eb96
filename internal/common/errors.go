package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDatabase          = errors.New("database error")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyInput        = errors.New("empty input")
	ErrExtraction        = errors.New("extraction failed")
	ErrAlreadyExists     = errors.New("resource already exists")
)

// Error codes carried by AppError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConfig     = "CONFIG_ERROR"
	CodeDatabase   = "DATABASE_ERROR"
	CodeTransition = "INVALID_TRANSITION"
	CodeConflict   = "CONFLICT"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NotFound builds the error every repository driver returns for a missing id.
func NotFound(kind, id string) error {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s %s not found", kind, id), ErrNotFound)
}

// AlreadyExists is returned when a create collides with an existing id.
func AlreadyExists(kind, id string) error {
	return NewAppError(CodeConflict, fmt.Sprintf("%s %s already exists", kind, id), ErrAlreadyExists)
}

// ExtractionFailure records that one field could not be derived from the text.
// It is never fatal: the field is defaulted and confidence drops.
type ExtractionFailure struct {
	Field  string
	Reason string
}

func (e ExtractionFailure) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("extraction failed for field '%s'", e.Field)
	}
	return fmt.Sprintf("extraction failed for field '%s': %s", e.Field, e.Reason)
}

func (e ExtractionFailure) Unwrap() error { return ErrExtraction }

// EmptyInputWarning marks a document whose text was empty or unreadable.
type EmptyInputWarning struct {
	FileName string
}

func (w EmptyInputWarning) Error() string {
	if w.FileName == "" {
		return "no readable text in document"
	}
	return fmt.Sprintf("no readable text in document %q", w.FileName)
}

func (w EmptyInputWarning) Unwrap() error { return ErrEmptyInput }

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

// ToStatus converts a domain error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var ve ValidationError
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput), errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
