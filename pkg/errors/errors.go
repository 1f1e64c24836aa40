package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeAttachment      = "ATTACHMENT_ERROR"
	CodeStorage         = "STORAGE_ERROR"
	CodeNotification    = "NOTIFICATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeBadRequest      = "BAD_REQUEST"
	CodeInternal        = "INTERNAL_ERROR"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Validation reports missing or malformed submission fields.
func Validation(message string, err error) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest, err)
}

// Attachment reports an uploaded file with a disallowed type or size.
func Attachment(message string, err error) *AppError {
	return New(CodeAttachment, message, http.StatusBadRequest, err)
}

// Storage reports a read or write failure on the persistence medium.
func Storage(message string, err error) *AppError {
	return New(CodeStorage, message, http.StatusInternalServerError, err)
}

// Notification wraps a failed email dispatch. It is only ever logged.
func Notification(message string, err error) *AppError {
	return New(CodeNotification, message, http.StatusInternalServerError, err)
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    CodeTooManyRequests,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
