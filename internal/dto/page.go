package dto

import "taskhub/internal/query"

// Page is the list envelope: one page of items plus its metadata. Data is
// never null.
type Page[T any] struct {
	Data []T        `json:"data"`
	Meta query.Meta `json:"meta"`
}

func NewPage[T any](data []T, meta query.Meta) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Meta: meta}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

type DeletedResponse struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}
