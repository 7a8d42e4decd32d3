package categories

import (
	"fmt"

	"github.com/vietddude/catalog/internal/core/domain"
)

// Options converts categories to select field options labelled "code - name".
func Options(categories []domain.Category) []domain.SelectOption[int] {
	options := make([]domain.SelectOption[int], 0, len(categories))
	for _, c := range categories {
		options = append(options, domain.SelectOption[int]{
			Value: c.Code,
			Label: fmt.Sprintf("%d - %s", c.Code, c.Name),
		})
	}
	return options
}
