// Package categories retrieves the categories offered by the category field.
package categories

import (
	"context"
	"net/http"

	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/core/result"
	"github.com/vietddude/catalog/internal/infra/api"
)

// Path is the upstream endpoint listing categories of a subline.
const Path = "Categoria/ObtenerCategorias"

// FetchFunc performs the category listing call.
type FetchFunc func(ctx context.Context, req api.Request[APIResponse]) result.Result[APIResponse, api.FetchError]

// Service lists categories through the API client.
type Service struct {
	fetch    FetchFunc
	hostName string
}

// NewService creates a Service backed by c.
func NewService(c *api.Client) *Service {
	return &Service{
		fetch: func(ctx context.Context, req api.Request[APIResponse]) result.Result[APIResponse, api.FetchError] {
			return api.Fetch(ctx, c, req)
		},
		hostName: c.HostName(),
	}
}

// NewServiceWithFetch creates a Service with a custom fetch function.
func NewServiceWithFetch(fetch FetchFunc, hostName string) *Service {
	return &Service{fetch: fetch, hostName: hostName}
}

// GetCategories lists the categories of a subline in server order. A failed
// fetch returns its api.FetchError unchanged.
func (s *Service) GetCategories(ctx context.Context, sublineCode int) ([]domain.Category, error) {
	res := s.fetch(ctx, api.Request[APIResponse]{
		Path:   Path,
		Method: http.MethodPost,
		Body:   api.NewBaseRequest(s.hostName, requestData{SublineCode: sublineCode}),
		Schema: responseSchema,
	})
	if res.IsFailure() {
		return nil, res.Err()
	}

	apiCategories := res.Value().Data
	categories := make([]domain.Category, 0, len(apiCategories))
	for _, c := range apiCategories {
		categories = append(categories, AdaptToCategory(c))
	}
	return categories, nil
}
