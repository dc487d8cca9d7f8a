package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("no rows returned")
	ErrConflict     = errors.New("row already exists")
	ErrUnauthorized = errors.New("not authorized")
)

// Error codes the backend reports that callers branch on.
const (
	CodeNoRows          = "PGRST116"
	CodeUniqueViolation = "23505"
	CodeRLSViolation    = "42501"
)

// APIError is any non-success response from the backend. Message is kept
// verbatim because it is shown to the user as is.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("backend error %s (HTTP %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

func (e *APIError) UserMessage() string { return e.Error() }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == CodeNoRows || e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Code == CodeUniqueViolation || e.Status == http.StatusConflict
	case ErrUnauthorized:
		return e.Code == CodeRLSViolation || e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
