// Package httpapi exposes category field options, health and metrics over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/catalog/internal/categories"
	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/api"
)

// CategorySource lists the categories of a subline.
type CategorySource interface {
	Get(ctx context.Context, sublineCode int) ([]domain.Category, error)
}

// HealthReporter reports the observed health of the upstream API.
type HealthReporter interface {
	GetHealth() api.HealthStatus
}

// ErrorBody is the JSON body returned for failed requests.
type ErrorBody struct {
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Server serves the HTTP surface.
type Server struct {
	Router *mux.Router

	categories CategorySource
	health     HealthReporter
	display    *api.Displayer
	log        *slog.Logger
	server     *http.Server
}

// NewServer creates a new server listening on port.
func NewServer(source CategorySource, health HealthReporter, display *api.Displayer, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Router:     mux.NewRouter(),
		categories: source,
		health:     health,
		display:    display,
		log:        logger,
	}

	s.Router.HandleFunc("/api/categories/{sublineCode}/options", s.handleCategoryOptions).Methods(http.MethodGet)
	s.Router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.Router.HandleFunc("/health/detailed", s.handleDetailed).Methods(http.MethodGet)
	s.Router.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router,
	}
	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	sublineCode, err := strconv.Atoi(mux.Vars(r)["sublineCode"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Tag: "BadRequest", Message: "sublineCode must be an integer"})
		return
	}

	list, err := s.categories.Get(r.Context(), sublineCode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories.Options(list))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	body := ErrorBody{Tag: "UnknownError"}
	if fe, ok := api.AsFetchError(err); ok {
		body.Tag = string(fe.Tag())
	}

	message, renderErr := s.display.Render(err, nil)
	if renderErr != nil {
		var defect *api.DefectError
		if errors.As(renderErr, &defect) {
			writeJSON(w, http.StatusInternalServerError, ErrorBody{Tag: body.Tag, Message: defect.Error()})
			return
		}
		message = api.GenericErrorMessage
	}
	body.Message = message

	writeJSON(w, statusFor(err), body)
}

// statusFor maps a failure to the status returned to our own callers.
func statusFor(err error) int {
	fe, ok := api.AsFetchError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if fe.Tag() == api.TagTimeout {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := Evaluate(s.health.GetHealth())

	code := http.StatusOK
	if status == StatusCritical {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": string(status)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.GetHealth())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
