package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Codes carried by AppError. Message is what a user sees; Code is for logs.
const (
	CodeValidation    = "VALIDATION"
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidStatus = "INVALID_STATUS"
	CodeNoText        = "NO_TEXT"
	CodeOCRFailed     = "OCR_FAILED"
	CodeConfig        = "CONFIG_ERROR"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
	ErrDatabase     = errors.New("database error")
)

// AppError pairs a user-facing message with the sentinel it belongs to.
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

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// ValidationFailed is a rejected form submission.
func ValidationFailed(message string) *AppError {
	return NewAppError(CodeValidation, message, ErrValidation)
}

func NotFound(format string, args ...any) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf(format, args...), ErrNotFound)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage returns the AppError message when err carries one, else err.Error().
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

// ToStatus maps domain errors onto gRPC status codes. Errors that already
// carry a status pass through.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && status.Code(err) != codes.Unknown {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return status.Error(codes.InvalidArgument, UserMessage(err))
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, UserMessage(err))
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, ErrDatabase):
		return status.Error(codes.Unavailable, "storage unavailable")
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
