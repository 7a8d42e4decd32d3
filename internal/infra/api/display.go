package api

import (
	"fmt"
	"log/slog"
	"net/http"
)

// GenericErrorMessage is shown for errors outside the taxonomy.
const GenericErrorMessage = "Error communicating with the server"

// EnvDev is the environment in which schema mismatches fail loudly.
const EnvDev = "dev"

// Renderer produces the message shown for a fetch error.
type Renderer func(err FetchError) string

// Renderers overrides the default message per tag.
type Renderers map[Tag]Renderer

// DefectError reports a schema mismatch in the dev environment. It is a bug
// in the client or the server contract, not a condition to show users.
type DefectError struct {
	Mismatch *BodySchemaMismatchError
}

func (e *DefectError) Error() string {
	return fmt.Sprintf("BodySchemaMismatchError fetching path %q: %v", e.Mismatch.Path, e.Mismatch.Cause)
}

func (e *DefectError) Unwrap() error { return e.Mismatch }

// Displayer maps errors to user-facing messages.
type Displayer struct {
	env string
	log *slog.Logger
}

// NewDisplayer creates a Displayer for the given environment.
func NewDisplayer(env string, logger *slog.Logger) *Displayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Displayer{env: env, log: logger}
}

// Render returns the message for err. A renderer in overrides replaces the
// default text for its tag. Errors that are not fetch errors get
// GenericErrorMessage. In the dev environment a schema mismatch returns a
// *DefectError instead of a message.
func (d *Displayer) Render(err error, overrides Renderers) (string, error) {
	fe, ok := AsFetchError(err)
	if !ok {
		return GenericErrorMessage, nil
	}

	if mismatch, ok := fe.(*BodySchemaMismatchError); ok && d.env == EnvDev {
		defect := &DefectError{Mismatch: mismatch}
		d.log.Error("Schema mismatch", "path", mismatch.Path, "error", mismatch.Cause)
		return "", defect
	}
	if network, ok := fe.(*NetworkError); ok {
		d.log.Error("Network error occurred", "underlying", network.Cause)
	}

	if custom, ok := overrides[fe.Tag()]; ok && custom != nil {
		return custom(fe), nil
	}
	return defaultMessage(fe), nil
}

func defaultMessage(fe FetchError) string {
	code := fmt.Sprintf("Error code: %q", string(fe.Tag()))

	switch e := fe.(type) {
	case *HTTPError:
		text := e.Status
		if text == "" {
			text = http.StatusText(e.StatusCode)
		}
		return fmt.Sprintf("Error %d | %s", e.StatusCode, text)
	case *TimeoutError:
		return fmt.Sprintf("%s. Request timed out. %s", GenericErrorMessage, code)
	case *NetworkError:
		return fmt.Sprintf("%s. Check your internet connection. %s", GenericErrorMessage, code)
	case *APIResponseError:
		return fmt.Sprintf("%s | %q. %s", GenericErrorMessage, e.Response.ErrorMessage, code)
	case *APIUnexpectedError:
		return fmt.Sprintf("Technical error. %s\n%s", code, e.Text)
	default:
		return fmt.Sprintf("%s. %s", GenericErrorMessage, code)
	}
}
