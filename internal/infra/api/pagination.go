package api

// Pagination is the page a caller asks for.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// DefaultPagination is the first page with the default page size.
var DefaultPagination = Pagination{Page: 1, PageSize: 25}

// PaginatedData is a page of results stripped of its envelope.
type PaginatedData[T any] struct {
	TotalPages   int `json:"totalPages"`
	PageSize     int `json:"pageSize"`
	CurrentPage  int `json:"currentPage"`
	TotalRecords int `json:"totalRecords"`
	Data         T   `json:"data"`
}

// DefaultPaginatedValues is an empty first page, used before data arrives.
func DefaultPaginatedValues[T any]() PaginatedData[[]T] {
	return PaginatedData[[]T]{
		Data:         []T{},
		CurrentPage:  DefaultPagination.Page,
		TotalPages:   1,
		PageSize:     DefaultPagination.PageSize,
		TotalRecords: 0,
	}
}

// AdaptToPaginatedData strips the envelope from r, keeping data as payload.
func AdaptToPaginatedData[T, D any](r PaginatedResponse[T], data D) PaginatedData[D] {
	return PaginatedData[D]{
		CurrentPage:  r.CurrentPage,
		PageSize:     r.PageSize,
		TotalPages:   r.TotalPages,
		TotalRecords: r.TotalRecords,
		Data:         data,
	}
}
