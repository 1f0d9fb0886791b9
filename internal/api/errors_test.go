package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rrens/chat-client/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"401", &APIError{StatusCode: http.StatusUnauthorized}, KindUnauthorized},
		{"wrapped 401", fmt.Errorf("fetch: %w", &APIError{StatusCode: 401}), KindUnauthorized},
		{"transport", fmt.Errorf("GET chat: %w: %w", ErrTransport, errors.New("dial tcp")), KindTransport},
		{"deadline", context.DeadlineExceeded, KindTransport},
		{"local validation", &domain.ValidationError{Fields: map[string]string{"email": "invalid email format"}}, KindValidation},
		{"404", &APIError{StatusCode: http.StatusNotFound}, KindValidation},
		{"422", &APIError{StatusCode: http.StatusUnprocessableEntity}, KindValidation},
		{"500", &APIError{StatusCode: http.StatusInternalServerError}, KindUnexpected},
		{"other", errors.New("boom"), KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 404, Method: "GET", Path: "chat/1", Detail: "Chat not found"}
	assert.Equal(t, "GET chat/1: HTTP 404: Chat not found", err.Error())

	err = &APIError{StatusCode: 502, Method: "GET", Path: "chat"}
	assert.Equal(t, "GET chat: HTTP 502", err.Error())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "unexpected", KindUnexpected.String())
}
