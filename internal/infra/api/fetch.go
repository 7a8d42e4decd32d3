package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vietddude/catalog/internal/core/result"
	"github.com/vietddude/catalog/internal/infra/metrics"
)

var baseResponseSchema = MustJSONSchema[BaseResponse]()

// BaseResponseSchema is the default schema for error response bodies.
func BaseResponseSchema() Schema[BaseResponse] {
	return baseResponseSchema
}

// Request describes one call to the upstream API.
type Request[T any] struct {
	// Path is joined to the base URL (e.g. "Categoria/ObtenerCategorias").
	Path string

	// Method defaults to POST when Body is set and GET otherwise.
	Method string

	// Body is sent as JSON, typically a BaseRequest or PaginatedRequest.
	Body any

	Header http.Header

	// Timeout bounds the whole exchange. Zero leaves only the client timeout.
	Timeout time.Duration

	// Schema validates success bodies. Nil passes the body through.
	Schema Schema[T]

	// ErrorSchema validates JSON error bodies. Nil means BaseResponseSchema.
	ErrorSchema Schema[BaseResponse]

	// BaseURL overrides the client's base URL for this request.
	BaseURL string
}

// Fetch executes one request/response cycle and classifies every failure.
// It never panics and never returns a bare error.
func Fetch[T any](ctx context.Context, c *Client, req Request[T]) result.Result[T, FetchError] {
	start := time.Now()
	res, reachable := fetch(ctx, c, req)
	c.observe(req.Path, res.Err(), reachable, time.Since(start))
	return res
}

func fetch[T any](
	ctx context.Context,
	c *Client,
	req Request[T],
) (result.Result[T, FetchError], bool) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
		if req.Body != nil {
			method = http.MethodPost
		}
	}
	url := c.resolveURL(req.BaseURL, req.Path)

	fetching := result.Await(result.TryCatchAsync(ctx,
		func(ctx context.Context) ([]byte, error) {
			return c.send(ctx, method, url, req.Body, req.Header)
		},
		ClassifyTransportError,
	))

	if fetching.IsFailure() {
		httpErr, ok := fetching.Err().(*HTTPError)
		if !ok {
			return result.Failure[T](fetching.Err()), false
		}
		defer httpErr.Close()
		reachable := httpErr.StatusCode < http.StatusInternalServerError

		if !isJSONContentType(httpErr.Header.Get("Content-Type")) {
			return result.Failure[T, FetchError](&APIUnexpectedError{Text: readText(httpErr)}), reachable
		}

		errorSchema := req.ErrorSchema
		if errorSchema == nil {
			errorSchema = baseResponseSchema
		}
		parsed := parseErrorResponse(httpErr, errorSchema, req.Path)
		if parsed.IsFailure() {
			return result.Failure[T](parsed.Err()), reachable
		}
		return result.Failure[T, FetchError](&APIResponseError{
			Response: AdaptToErrorResponse(parsed.Value()),
		}), reachable
	}

	body := fetching.Value()
	if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
		return result.Failure[T, FetchError](&JSONParseError{
			Cause: errors.New("response body is not valid json"),
		}), true
	}
	return ParseBody(body, req.Schema, req.Path), true
}

// isJSONContentType keeps the plain substring check: anything without
// application/json is treated as unparseable.
func isJSONContentType(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}

// readText extracts the raw error body. A failed read yields "".
func readText(httpErr *HTTPError) string {
	text := result.TryCatch(
		func() (string, error) {
			if httpErr.Body == nil {
				return "", nil
			}
			b, err := io.ReadAll(httpErr.Body)
			return string(b), err
		},
		func(raw any) *TextParseError { return &TextParseError{Cause: asError(raw)} },
	)
	if text.IsFailure() {
		return ""
	}
	return text.Value()
}

// parseErrorResponse decodes a JSON error body and validates it. A body that
// cannot be decoded is validated as {}.
func parseErrorResponse(
	httpErr *HTTPError,
	schema Schema[BaseResponse],
	path string,
) result.Result[BaseResponse, FetchError] {
	decoded := result.TryCatch(
		func() ([]byte, error) {
			if httpErr.Body == nil {
				return nil, errors.New("empty body")
			}
			b, err := io.ReadAll(httpErr.Body)
			if err != nil {
				return nil, err
			}
			if !json.Valid(b) {
				return nil, errors.New("invalid json")
			}
			return b, nil
		},
		func(raw any) *JSONParseError { return &JSONParseError{Cause: asError(raw)} },
	)

	body := []byte("{}")
	if decoded.IsSuccess() {
		body = decoded.Value()
	}
	return ParseBody(body, schema, path)
}

func asError(raw any) error {
	if err, ok := raw.(error); ok {
		return err
	}
	return fmt.Errorf("%v", raw)
}

func (c *Client) observe(path string, fetchErr FetchError, reachable bool, latency time.Duration) {
	metrics.FetchDuration.WithLabelValues(path).Observe(latency.Seconds())

	if reachable {
		c.recordSuccess(latency)
	} else {
		c.recordFailure()
	}

	if fetchErr == nil {
		metrics.FetchRequestsTotal.WithLabelValues(path, metrics.OutcomeSuccess).Inc()
		c.log.Debug("Fetch succeeded", "path", path, "latency", latency)
		return
	}

	metrics.FetchRequestsTotal.WithLabelValues(path, string(fetchErr.Tag())).Inc()
	c.log.Warn("Fetch failed",
		"path", path,
		"tag", fetchErr.Tag(),
		"error", fetchErr,
		"latency", latency,
	)
}
