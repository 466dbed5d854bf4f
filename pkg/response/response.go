package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jastrate/task-manager/pkg/logger"
	"gorm.io/gorm"
)

// Kind classifies an AppError. Each kind maps to exactly one HTTP status.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

var kindStatus = map[Kind]int{
	KindInvalidInput: http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindInternal:     http.StatusInternalServerError,
}

// AppError is a classified failure carrying the message shown to API clients.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code for the error's kind.
func (e *AppError) HTTPStatus() int {
	if status, ok := kindStatus[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func NewBadRequest(msg string) *AppError {
	return &AppError{Kind: KindInvalidInput, Message: msg}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: msg}
}

func NewForbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

// NewServerError wraps an unexpected failure. The cause is logged, never sent.
func NewServerError(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err, classifying storage errors on the way.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return FromError(err).Kind
}

// FromError converts any error into an AppError. Store errors for a missing
// record become NotFound and unique violations become Conflict.
func FromError(err error) *AppError {
	var appErr *AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &AppError{Kind: KindNotFound, Message: "Resource not found", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &AppError{Kind: KindConflict, Message: "Duplicate field value entered", Err: err}
	default:
		return &AppError{Kind: KindInternal, Message: "Internal server error", Err: err}
	}
}

func envelope(ok bool, message string, payload gin.H) gin.H {
	body := gin.H{}
	for k, v := range payload {
		body[k] = v
	}
	body["status"] = ok
	if message != "" {
		body["message"] = message
	}
	return body
}

// OK writes a 200 envelope with the payload fields merged at the top level.
func OK(c *gin.Context, message string, payload gin.H) {
	c.JSON(http.StatusOK, envelope(true, message, payload))
}

// Created writes a 201 envelope.
func Created(c *gin.Context, message string, payload gin.H) {
	c.JSON(http.StatusCreated, envelope(true, message, payload))
}

// Error writes the failure envelope for err.
func Error(c *gin.Context, err error) {
	appErr := FromError(err)
	if appErr.Kind == KindInternal {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(appErr.HTTPStatus(), envelope(false, "Internal server error", nil))
		return
	}
	c.JSON(appErr.HTTPStatus(), envelope(false, appErr.Message, nil))
}

// Abort writes the failure envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
