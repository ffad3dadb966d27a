package dto

// ErrorResponse HTTP error body.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Rows    []string `json:"rows,omitempty"` // offending rows of a rejected submission
}

// PartialWriteResponse is returned when a multi-row submission stopped on a store failure.
// Written holds what was committed before the failing row.
type PartialWriteResponse struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	FailedRow string      `json:"failed_row"`
	Operation string      `json:"operation"`
	Written   interface{} `json:"written,omitempty"`
}

// ListResponse wraps a list.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewList builds a ListResponse; a nil slice becomes empty.
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}
