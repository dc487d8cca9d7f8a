// Package handler exposes the services over HTTP with gin. Handlers bind
// the request, call one service operation under a deadline and map its
// error to a status code.
package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"novelhub/internal/backend"
	"novelhub/internal/notify"
	"novelhub/internal/resilience"
	"novelhub/internal/service"
)

// DefaultRequestTimeout bounds one request end to end, retries included.
const DefaultRequestTimeout = 30 * time.Second

var requestTimeout = DefaultRequestTimeout

// SetRequestTimeout is called once at start-up with REQUEST_TIMEOUT.
func SetRequestTimeout(d time.Duration) {
	if d > 0 {
		requestTimeout = d
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// StatusFor maps a service error to an HTTP status.
func StatusFor(err error) int {
	var (
		verr   *service.ValidationError
		apiErr *backend.APIError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrLoginRequired):
		return http.StatusUnauthorized
	case resilience.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, backend.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusForbidden
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := notify.Message(err)
	if status == http.StatusNotFound && !hasUserMessage(err) {
		msg = "not found"
	}
	body := gin.H{"error": msg}
	var verr *service.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body["field"] = verr.Field
	}
	c.JSON(status, body)
}

func hasUserMessage(err error) bool {
	var um interface{ UserMessage() string }
	return errors.As(err, &um)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// formUpload reads an optional image from a multipart field. The caller
// closes the returned file when it is non-nil.
func formUpload(c *gin.Context, field string) (*service.Upload, multipart.File, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil, nil
	}
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", field, err)
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", field, err)
	}
	return &service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, f, nil
}
