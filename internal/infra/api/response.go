package api

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultErrorMessage replaces a missing server error message.
const DefaultErrorMessage = "error message not provided by the server"

// BaseResponse is the envelope every response is wrapped in. It is also the
// default shape expected from error responses.
type BaseResponse struct {
	StatusCode    string  `json:"codigoEstado"`
	ErrorMessage  *string `json:"mensajeError"`
	TransactionID string  `json:"idTransaccion"`
}

// Validate checks constraints the JSON schema cannot express.
func (r BaseResponse) Validate() error {
	return validateTransactionID(r.TransactionID)
}

// Response is a BaseResponse carrying a payload.
type Response[T any] struct {
	StatusCode    string  `json:"codigoEstado"`
	ErrorMessage  *string `json:"mensajeError"`
	TransactionID string  `json:"idTransaccion"`
	Data          T       `json:"data"`
}

// Validate checks constraints the JSON schema cannot express.
func (r Response[T]) Validate() error {
	return validateTransactionID(r.TransactionID)
}

// PaginatedResponse is a Response carrying one page of results.
type PaginatedResponse[T any] struct {
	StatusCode    string  `json:"codigoEstado"`
	ErrorMessage  *string `json:"mensajeError"`
	TransactionID string  `json:"idTransaccion"`
	Data          T       `json:"data"`
	CurrentPage   int     `json:"paginaActual"`
	PageSize      int     `json:"tamanoPagina"`
	TotalPages    int     `json:"totalPaginas"`
	TotalRecords  int     `json:"totalRegistros"`
}

// Validate checks constraints the JSON schema cannot express.
func (r PaginatedResponse[T]) Validate() error {
	return validateTransactionID(r.TransactionID)
}

func validateTransactionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("idTransaccion: invalid uuid %q: %w", id, err)
	}
	return nil
}

// ErrorResponse is the normalized error envelope carried by APIResponseError.
type ErrorResponse struct {
	StatusCode    string `json:"statusCode"`
	ErrorMessage  string `json:"errorMessage"`
	TransactionID string `json:"transactionId"`
}

// AdaptToErrorResponse normalizes a validated error envelope.
func AdaptToErrorResponse(r BaseResponse) ErrorResponse {
	message := DefaultErrorMessage
	if r.ErrorMessage != nil {
		message = *r.ErrorMessage
	}
	return ErrorResponse{
		StatusCode:    r.StatusCode,
		ErrorMessage:  message,
		TransactionID: r.TransactionID,
	}
}
