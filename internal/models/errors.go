package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies an AppError for status mapping at the HTTP edge.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindInvalidArgument
	KindUnauthorized
	KindForbidden
)

// Error codes returned in the "error" field of API error bodies.
const (
	CodePostNotFound         = "POST_NOT_FOUND"
	CodeCommentNotFound      = "COMMENT_NOT_FOUND"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
	CodeInvalidParent        = "INVALID_PARENT"
	CodeMaxDepthReached      = "MAX_DEPTH_REACHED"
	CodeInvalidTask          = "INVALID_TASK"
	CodeUsernameExists       = "USERNAME_EXISTS"
	CodeTagExists            = "TAG_EXISTS"
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInternal             = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AppError represents a custom application error
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error constructors
func NewNotFoundError(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func NewInvalidArgumentError(code, message string) *AppError {
	return &AppError{Kind: KindInvalidArgument, Code: code, Message: message}
}

func NewValidationError(message string) *AppError {
	return NewInvalidArgumentError(CodeValidation, message)
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// Common not-found errors.
var (
	ErrPostNotFound         = NewNotFoundError(CodePostNotFound, "Post not found")
	ErrCommentNotFound      = NewNotFoundError(CodeCommentNotFound, "Comment not found")
	ErrUserNotFound         = NewNotFoundError(CodeUserNotFound, "User not found")
	ErrNotificationNotFound = NewNotFoundError(CodeNotificationNotFound, "Notification not found")
	ErrMaxDepthReached      = NewInvalidArgumentError(CodeMaxDepthReached, "Replies can only be one level deep")
)

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError writes a standardized error body. Errors that are not an
// AppError, or that are internal, never leak their detail to the client.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error:   CodeInternal,
			Message: "Internal server error",
		})
	}

	return c.Status(appErr.Status()).JSON(ErrorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
	})
}
