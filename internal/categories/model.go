package categories

import (
	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/api"
)

// APICategory is a category as the upstream API sends it.
type APICategory struct {
	Code        int    `json:"codigoCategoria"`
	Description string `json:"descripcionCategoria"`
}

// APIResponse is the body of a successful category listing.
type APIResponse = api.Response[[]APICategory]

// responseSchema validates category listings.
var responseSchema = api.MustJSONSchema[APIResponse]()

// requestData is the payload of a category listing request.
type requestData struct {
	SublineCode int `json:"codigoSublinea"`
}

// AdaptToCategory converts the wire model to the domain model.
func AdaptToCategory(c APICategory) domain.Category {
	return domain.Category{
		Code: c.Code,
		Name: c.Description,
	}
}
