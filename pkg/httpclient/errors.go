package httpclient

import (
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/arca-mz/storefront/pkg/errors"
)

// ResponseError is returned for non-2xx responses from the ARCA core API.
// The raw body is retained so callers can run their own shape probing over
// it (the checkout flow matches stock-shortfall payloads against it).
type ResponseError struct {
	Service string
	Status  int
	Body    []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, string(e.Body))
}

// Unwrap maps the HTTP status onto the standard error sentinels so that
// errors.Is works against the response without inspecting the body.
func (e *ResponseError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.Status == http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	case e.Status == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return apperrors.ErrForbidden
	case e.Status == http.StatusConflict:
		return apperrors.ErrConflict
	case e.Status == http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidInput
	case e.Status == http.StatusServiceUnavailable:
		return apperrors.ErrServiceUnavail
	case e.Status >= 500:
		return apperrors.ErrInternal
	default:
		return nil
	}
}

// NewResponseError reads (up to 1 MB of) the body of a non-2xx HTTP response
// and wraps it in a ResponseError. The response body is fully consumed and
// closed. The caller should only invoke this when resp.StatusCode indicates
// an error.
func NewResponseError(resp *http.Response, serviceName string) *ResponseError {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		body = nil
	}

	return &ResponseError{
		Service: serviceName,
		Status:  resp.StatusCode,
		Body:    body,
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
