package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDisplayer_DefaultMessages(t *testing.T) {
	d := NewDisplayer("prod", quietLogger())

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"http", &HTTPError{StatusCode: 500, Status: "500 Internal Server Error"}, "Error 500 | 500 Internal Server Error"},
		{"timeout", &TimeoutError{}, `Request timed out. Error code: "TimeoutError"`},
		{"network", &NetworkError{Cause: errors.New("refused")}, `Check your internet connection. Error code: "NetworkError"`},
		{"api response", apiError("500"), `| "Error". Error code: "ApiResponseError"`},
		{"unexpected", &APIUnexpectedError{Text: "<html>"}, "Technical error. Error code: \"ApiUnexpectedError\"\n<html>"},
		{"schema mismatch", &BodySchemaMismatchError{Path: "p"}, `Error code: "BodySchemaMismatchError"`},
		{"json parse", &JSONParseError{}, `Error code: "JsonParseError"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Render(tt.err, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Render() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestDisplayer_UnknownErrorIsGeneric(t *testing.T) {
	d := NewDisplayer("prod", quietLogger())

	for _, err := range []error{errors.New("plain"), &TextParseError{}, nil} {
		got, renderErr := d.Render(err, nil)
		if renderErr != nil || got != GenericErrorMessage {
			t.Errorf("Render(%v) = %q, %v", err, got, renderErr)
		}
	}
}

func TestDisplayer_Override(t *testing.T) {
	d := NewDisplayer("prod", quietLogger())
	overrides := Renderers{
		TagHTTP: func(err FetchError) string { return "custom http" },
	}

	got, _ := d.Render(fmt.Errorf("wrapped: %w", &HTTPError{StatusCode: 418}), overrides)
	if got != "custom http" {
		t.Errorf("Render() = %q", got)
	}

	got, _ = d.Render(&TimeoutError{}, overrides)
	if got == "custom http" {
		t.Error("override applied to the wrong tag")
	}
}

func TestDisplayer_SchemaMismatchLoudInDev(t *testing.T) {
	d := NewDisplayer(EnvDev, quietLogger())
	mismatch := &BodySchemaMismatchError{Path: "Categoria/ObtenerCategorias", Cause: &SchemaError{Stage: "schema", Err: errors.New("bad")}}
	overrides := Renderers{TagBodySchemaMismatch: func(FetchError) string { return "hidden" }}

	msg, err := d.Render(mismatch, overrides)
	var defect *DefectError
	if !errors.As(err, &defect) {
		t.Fatalf("expected *DefectError, got %v (msg %q)", err, msg)
	}
	if !strings.Contains(defect.Error(), "Categoria/ObtenerCategorias") {
		t.Errorf("defect message = %q", defect.Error())
	}
	if !errors.Is(err, mismatch) {
		t.Error("defect should unwrap to the mismatch")
	}
}
