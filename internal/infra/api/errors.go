package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// Tag is the discriminant every AppError exposes.
type Tag string

const (
	TagNetwork            Tag = "NetworkError"
	TagTimeout            Tag = "TimeoutError"
	TagHTTP               Tag = "HttpError"
	TagJSONParse          Tag = "JsonParseError"
	TagTextParse          Tag = "TextParseError"
	TagBodySchemaMismatch Tag = "BodySchemaMismatchError"
	TagAPIResponse        Tag = "ApiResponseError"
	TagAPIUnexpected      Tag = "ApiUnexpectedError"
)

// AppError is implemented by every tagged error in this package.
type AppError interface {
	error
	Tag() Tag
}

// FetchError is the closed set of errors Fetch can produce.
type FetchError interface {
	AppError
	fetchError()
}

// NetworkError is a transport-level failure (DNS, refused connection, aborted
// request, or a panic inside the transport).
type NetworkError struct {
	Cause any
}

func (e *NetworkError) Tag() Tag { return TagNetwork }
func (e *NetworkError) fetchError() {}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	err, _ := e.Cause.(error)
	return err
}

// TimeoutError means the request exceeded its deadline.
type TimeoutError struct {
	Cause error
}

func (e *TimeoutError) Tag() Tag { return TagTimeout }
func (e *TimeoutError) fetchError() {}

func (e *TimeoutError) Error() string {
	if e.Cause == nil {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %v", e.Cause)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// HTTPError is a non-2xx response. The body is left unread so the
// orchestrator can decide how to consume it.
type HTTPError struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       io.ReadCloser
}

func newHTTPError(resp *http.Response) *HTTPError {
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       resp.Body,
	}
}

func (e *HTTPError) Tag() Tag { return TagHTTP }
func (e *HTTPError) fetchError() {}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Status)
}

// Close releases the response body, if any.
func (e *HTTPError) Close() error {
	if e.Body == nil {
		return nil
	}
	return e.Body.Close()
}

// JSONParseError means a body expected to be JSON could not be decoded.
type JSONParseError struct {
	Cause error
}

func (e *JSONParseError) Tag() Tag { return TagJSONParse }
func (e *JSONParseError) fetchError() {}

func (e *JSONParseError) Error() string {
	return fmt.Sprintf("decode json body: %v", e.Cause)
}

func (e *JSONParseError) Unwrap() error { return e.Cause }

// TextParseError means the raw text of a response could not be read.
// It is absorbed by Fetch and never returned to callers.
type TextParseError struct {
	Cause error
}

func (e *TextParseError) Tag() Tag { return TagTextParse }

func (e *TextParseError) Error() string {
	return fmt.Sprintf("read text body: %v", e.Cause)
}

func (e *TextParseError) Unwrap() error { return e.Cause }

// BodySchemaMismatchError means a decoded body did not match the expected
// schema.
type BodySchemaMismatchError struct {
	Path  string
	Cause *SchemaError
}

func (e *BodySchemaMismatchError) Tag() Tag { return TagBodySchemaMismatch }
func (e *BodySchemaMismatchError) fetchError() {}

func (e *BodySchemaMismatchError) Error() string {
	return fmt.Sprintf("body schema mismatch fetching path %q: %v", e.Path, e.Cause)
}

func (e *BodySchemaMismatchError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// APIResponseError is a well-formed error envelope returned by the server.
type APIResponseError struct {
	Response ErrorResponse
}

func (e *APIResponseError) Tag() Tag { return TagAPIResponse }
func (e *APIResponseError) fetchError() {}

func (e *APIResponseError) Error() string {
	return fmt.Sprintf("api error %s: %s (transaction %s)",
		e.Response.StatusCode, e.Response.ErrorMessage, e.Response.TransactionID)
}

// APIUnexpectedError carries the raw text of a non-JSON error response.
type APIUnexpectedError struct {
	Text string
}

func (e *APIUnexpectedError) Tag() Tag { return TagAPIUnexpected }
func (e *APIUnexpectedError) fetchError() {}

func (e *APIUnexpectedError) Error() string {
	return fmt.Sprintf("unexpected api response: %s", e.Text)
}

// ClassifyTransportError maps anything raised by the transport step to a
// FetchError. It is total and never panics.
func ClassifyTransportError(raw any) FetchError {
	err, ok := raw.(error)
	if !ok {
		return &NetworkError{Cause: raw}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return timeoutErr
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TimeoutError{Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Cause: err}
	}

	return &NetworkError{Cause: err}
}

// AsFetchError reports whether err is, or wraps, a FetchError.
func AsFetchError(err error) (FetchError, bool) {
	var fe FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsFetchError reports whether err is, or wraps, a FetchError.
func IsFetchError(err error) bool {
	_, ok := AsFetchError(err)
	return ok
}
