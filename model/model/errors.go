package model

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	ErrorKindAuthentication ErrorKind = "authentication"
	ErrorKindValidation     ErrorKind = "validation"
	ErrorKindUpstream       ErrorKind = "upstream"
	ErrorKindPersistence    ErrorKind = "persistence"
	ErrorKindRowLevel       ErrorKind = "row"
)

// IngestError is the failure of an ingestion step. Status is the http
// status surfaced to the caller.
type IngestError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Details string
}

func (e *IngestError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

func NewAuthenticationError(message string) error {
	return &IngestError{Kind: ErrorKindAuthentication, Status: http.StatusUnauthorized, Message: message}
}

func NewValidationError(message, details string) error {
	return &IngestError{Kind: ErrorKindValidation, Status: http.StatusBadRequest, Message: message, Details: details}
}

// NewUpstreamError keeps the vendor status. Unknown vendor status is a 502.
func NewUpstreamError(status int, message, details string) error {
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	return &IngestError{Kind: ErrorKindUpstream, Status: status, Message: message, Details: details}
}

func NewPersistenceError(message, details string) error {
	return &IngestError{Kind: ErrorKindPersistence, Status: http.StatusInternalServerError, Message: message, Details: details}
}

// NewRowLevelError is a failed csv row. row is 1-based.
func NewRowLevelError(row int, details string) error {
	return &IngestError{Kind: ErrorKindRowLevel, Status: http.StatusInternalServerError,
		Message: fmt.Sprintf("Row %d", row), Details: details}
}

// AsIngestError unwraps err down to its IngestError cause, if any.
func AsIngestError(err error) (*IngestError, bool) {
	if err == nil {
		return nil, false
	}
	ingestErr, ok := errors.Cause(err).(*IngestError)
	return ingestErr, ok
}

func IsErrorKind(err error, kind ErrorKind) bool {
	ingestErr, ok := AsIngestError(err)
	return ok && ingestErr.Kind == kind
}

// ErrorStatus is the http status for err. Errors outside the taxonomy are 500.
func ErrorStatus(err error) int {
	if ingestErr, ok := AsIngestError(err); ok {
		return ingestErr.Status
	}
	return http.StatusInternalServerError
}
