package api

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/google/uuid"
)

// BaseRequest is the envelope every request body is wrapped in.
type BaseRequest[T any] struct {
	TransactionID string `json:"idTransaccion"`
	HostName      string `json:"nombreHost"`
	Data          *T     `json:"data"`
}

// PaginatedRequest adds the requested page to a BaseRequest.
type PaginatedRequest[T any] struct {
	BaseRequest[T]
	CurrentPage int `json:"paginaActual"`
	PageSize    int `json:"tamanoPagina"`
}

// NewBaseRequest wraps data in a BaseRequest with a fresh transaction id.
// Empty payloads are sent as null.
func NewBaseRequest[T any](hostName string, data T) BaseRequest[T] {
	return BaseRequest[T]{
		TransactionID: uuid.NewString(),
		HostName:      hostName,
		Data:          NormalizeData(data),
	}
}

// NewPaginatedRequest wraps data in a PaginatedRequest for the given page.
func NewPaginatedRequest[T any](hostName string, p Pagination, data T) PaginatedRequest[T] {
	return PaginatedRequest[T]{
		BaseRequest: NewBaseRequest(hostName, data),
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
	}
}

// NormalizeData returns nil for absent or empty payloads so the server never
// has to tell "no data" apart from "{}". Nil pointers, maps, slices and
// interfaces, empty maps and slices, and structs that encode to {} are empty.
func NormalizeData[T any](data T) *T {
	if isEmptyPayload(reflect.ValueOf(&data).Elem()) {
		return nil
	}
	return &data
}

func isEmptyPayload(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return isEmptyPayload(v.Elem())
	case reflect.Map, reflect.Slice:
		return v.IsNil() || v.Len() == 0
	case reflect.Struct:
		encoded, err := json.Marshal(v.Interface())
		if err != nil {
			return false
		}
		return bytes.Equal(encoded, []byte("{}"))
	default:
		return false
	}
}
