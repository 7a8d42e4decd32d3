package domain

// Category is a product category a user can pick in the category field.
type Category struct {
	Code int    `json:"categoryCode"`
	Name string `json:"categoryName"`
}

// SelectOption is one entry of a select field.
type SelectOption[T any] struct {
	Label string `json:"label"`
	Value T      `json:"value"`
}
