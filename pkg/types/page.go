package types

// Page is the listing shape shared by every cursor-paginated endpoint.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	Count      int    `json:"count"`
	HasMore    bool   `json:"hasMore"`
}
