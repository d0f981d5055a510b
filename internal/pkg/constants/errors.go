package constants

import (
	"errors"
	"fmt"
	"net/http"
)

type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound       = NewCodedError(http.StatusNotFound, "not found")
	ErrNoProcessedBatch = NewCodedError(http.StatusNotFound, "no processed upload for the requested scope")
	ErrValidation       = NewCodedError(http.StatusBadRequest, "invalid parameters")
	ErrIngestion        = NewCodedError(http.StatusUnprocessableEntity, "ingestion failed")
	ErrUnsupportedFile  = NewCodedError(http.StatusBadRequest, "unsupported file type")
)

// Validationf wraps ErrValidation with a detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// CodeOf returns the HTTP code of the first CodedError in the chain.
func CodeOf(err error) int {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return http.StatusInternalServerError
}
