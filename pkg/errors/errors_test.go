package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusForbidden, ErrorTypeAuth},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusBadGateway, ErrorTypeServerError},
		{http.StatusTeapot, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := FromStatus(tt.code, "https://example.com")
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestTypeOfAndStatusCodeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("fetch album: %w", FromStatus(500, "u"))

	assert.Equal(t, ErrorTypeServerError, TypeOf(wrapped))
	assert.Equal(t, 500, StatusCode(wrapped))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))
	assert.Equal(t, 0, StatusCode(stderrors.New("plain")))
}

func TestSentinels(t *testing.T) {
	err := fmt.Errorf("download: %w", ErrNotLoggedIn)
	assert.True(t, stderrors.Is(err, ErrNotLoggedIn))
	assert.False(t, stderrors.Is(err, ErrRunInProgress))
	assert.Contains(t, err.Error(), "not logged in")
}

func TestWrapUnwraps(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrorTypeFilesystem, "write file", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "filesystem error: write file: disk full", err.Error())

	auth := Wrap(ErrorTypeAuth, "login failed", FromStatus(403, "u"))
	assert.Equal(t, 403, auth.Code)
	assert.Equal(t, ErrorTypeAuth, TypeOf(auth))
}

func TestRetryability(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.False(t, IsRetryable(ErrorTypeAuth))
	assert.False(t, IsRetryable(ErrorTypePrecondition))

	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(503))
	assert.False(t, IsRetryableStatusCode(404))
	assert.False(t, IsRetryableStatusCode(400))
}
