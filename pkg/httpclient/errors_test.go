package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/arca-mz/storefront/pkg/errors"
)

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewResponseError_RetainsBody(t *testing.T) {
	resp := fakeResponse(http.StatusConflict, `{"detail":"Sem stock"}`)
	err := NewResponseError(resp, "core-api")

	require.NotNil(t, err)
	assert.Equal(t, "core-api", err.Service)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, `{"detail":"Sem stock"}`, string(err.Body))
}

func TestResponseError_ErrorString(t *testing.T) {
	err := &ResponseError{Service: "core-api", Status: 404, Body: []byte("not found")}
	assert.Contains(t, err.Error(), "core-api")
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
}

func TestResponseError_StatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusBadRequest, apperrors.ErrInvalidInput},
		{http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{http.StatusForbidden, apperrors.ErrForbidden},
		{http.StatusConflict, apperrors.ErrConflict},
		{http.StatusUnprocessableEntity, apperrors.ErrInvalidInput},
		{http.StatusServiceUnavailable, apperrors.ErrServiceUnavail},
		{http.StatusInternalServerError, apperrors.ErrInternal},
		{http.StatusBadGateway, apperrors.ErrInternal},
	}

	for _, tt := range tests {
		err := &ResponseError{Service: "core-api", Status: tt.status}
		assert.True(t, errors.Is(err, tt.sentinel), "status %d", tt.status)
	}
}

func TestResponseError_TeapotMapsToNothing(t *testing.T) {
	err := &ResponseError{Service: "core-api", Status: http.StatusTeapot}
	assert.False(t, errors.Is(err, apperrors.ErrInternal))
	assert.False(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(399))
	assert.False(t, IsClientError(500))
}
