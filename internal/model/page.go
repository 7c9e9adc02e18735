package model

// Page is one page of a paginated list. Total counts every record matching
// the list's filter, not just the ones in Items.
type Page[T any] struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Items []T `json:"items"`
}

// Collection is an unpaginated result set, used by the search endpoints.
type Collection[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// Message is a body carrying only a human-readable message, such as the
// confirmation returned by a delete.
type Message struct {
	Message string `json:"message"`
}
