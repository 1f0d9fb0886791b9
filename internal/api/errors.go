package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Rrens/chat-client/internal/domain"
)

var (
	// ErrUnauthorized matches any 401 response
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransport matches network failures and timeouts
	ErrTransport = errors.New("transport failure")
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// ErrorKind is the coarse failure category used to pick a notification
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindTransport
	KindUnauthorized
	KindValidation
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	default:
		return "unexpected"
	}
}

// Classify maps an error returned by the client or a store onto its kind
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrUnauthorized) {
		return KindUnauthorized
	}
	if errors.Is(err, ErrTransport) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return KindValidation
	}
	return KindUnexpected
}

// UserMessage returns the text to show for err: the backend detail verbatim
// for client errors, the local validation message, or fallback.
func UserMessage(err error, fallback string) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" && apiErr.StatusCode < 500 {
		return apiErr.Detail
	}
	return fallback
}
