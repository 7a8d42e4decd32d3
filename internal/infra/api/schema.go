package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/vietddude/catalog/internal/core/result"
)

// Schema validates a raw JSON body and produces a typed value.
type Schema[T any] interface {
	Validate(data []byte) (T, error)
}

// SchemaFunc adapts a function to the Schema interface.
type SchemaFunc[T any] func(data []byte) (T, error)

// Validate calls f(data).
func (f SchemaFunc[T]) Validate(data []byte) (T, error) {
	return f(data)
}

// Validatable is implemented by types with constraints beyond their shape.
type Validatable interface {
	Validate() error
}

// SchemaError is the structured detail of a failed validation.
type SchemaError struct {
	Stage string // "decode", "schema" or "constraint"
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// JSONSchema validates bodies against the JSON schema inferred from T.
// Unknown properties are tolerated.
type JSONSchema[T any] struct {
	resolved *jsonschema.Resolved
}

// NewJSONSchema infers and resolves the schema for T.
func NewJSONSchema[T any]() (*JSONSchema[T], error) {
	s, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}
	allowUnknownProperties(s)

	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	return &JSONSchema[T]{resolved: resolved}, nil
}

// MustJSONSchema is like NewJSONSchema but panics on error. It is meant for
// package-level schema variables.
func MustJSONSchema[T any]() *JSONSchema[T] {
	s, err := NewJSONSchema[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// Validate implements Schema.
func (s *JSONSchema[T]) Validate(data []byte) (T, error) {
	var zero T

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return zero, &SchemaError{Stage: "decode", Err: err}
	}
	if err := s.resolved.Validate(instance); err != nil {
		return zero, &SchemaError{Stage: "schema", Err: err}
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, &SchemaError{Stage: "decode", Err: err}
	}
	if c, ok := any(v).(Validatable); ok {
		if err := c.Validate(); err != nil {
			return zero, &SchemaError{Stage: "constraint", Err: err}
		}
	}
	return v, nil
}

// allowUnknownProperties drops the additionalProperties=false constraint that
// schema inference puts on structs.
func allowUnknownProperties(s *jsonschema.Schema) {
	if s == nil {
		return
	}
	if s.Properties != nil {
		s.AdditionalProperties = nil
	}
	for _, p := range s.Properties {
		allowUnknownProperties(p)
	}
	allowUnknownProperties(s.Items)
	allowUnknownProperties(s.AdditionalProperties)
	for _, d := range s.Defs {
		allowUnknownProperties(d)
	}
}

// ParseBody validates data with schema. A nil schema passes the body through
// with a plain typed decode.
func ParseBody[T any](data []byte, schema Schema[T], path string) result.Result[T, FetchError] {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}

	if schema == nil {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return result.Failure[T, FetchError](&BodySchemaMismatchError{
				Path:  path,
				Cause: &SchemaError{Stage: "decode", Err: err},
			})
		}
		return result.Success[T, FetchError](v)
	}

	v, err := schema.Validate(data)
	if err != nil {
		se, ok := err.(*SchemaError)
		if !ok {
			se = &SchemaError{Stage: "schema", Err: err}
		}
		return result.Failure[T, FetchError](&BodySchemaMismatchError{Path: path, Cause: se})
	}
	return result.Success[T, FetchError](v)
}
