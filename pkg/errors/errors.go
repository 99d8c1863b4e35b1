package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDuplicateDocument = errors.New("duplicate document id")
	ErrInvalidDocumentID = errors.New("invalid document id")
	ErrQuerySyntax       = errors.New("query syntax error")
	ErrInvalidScheme     = errors.New("invalid weighting scheme")
	ErrInvalidInput      = errors.New("invalid input")
	ErrIndexNotReady     = errors.New("index not ready")
	ErrInternal          = errors.New("internal error")
	ErrTimeout           = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error chain onto the status the search service
// answers with.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrQuerySyntax), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidScheme):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateDocument), errors.Is(err, ErrInvalidDocumentID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrIndexNotReady), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
