package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"novelhub/internal/backend"
	"novelhub/internal/resilience"
	"novelhub/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Field: "title", Message: "Please enter a title"}, http.StatusBadRequest},
		{"login", service.ErrLoginRequired, http.StatusUnauthorized},
		{"timeout", &resilience.TimeoutError{Operation: "Loading novels", After: time.Second}, http.StatusGatewayTimeout},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"not found", fmt.Errorf("get: %w", backend.ErrNotFound), http.StatusNotFound},
		{"no rows", &backend.APIError{Status: 406, Code: backend.CodeNoRows}, http.StatusNotFound},
		{"conflict", &backend.APIError{Status: 409, Code: backend.CodeUniqueViolation}, http.StatusConflict},
		{"rls", &backend.APIError{Status: 403, Code: backend.CodeRLSViolation}, http.StatusForbidden},
		{"bad request", &backend.APIError{Status: 400, Message: "Invalid login credentials"}, http.StatusBadRequest},
		{"upstream", &backend.APIError{Status: 500, Message: "boom"}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}
