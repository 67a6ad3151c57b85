package docpager

// Response is the envelope returned for one page.
type Response[E any] struct {
	Data   []E      `json:"data"`
	Paging PageInfo `json:"paging"`
}

// PageInfo describes the position of a page in the collection. Next and
// Previous are nil exactly when nothing lies beyond the page in that
// direction.
type PageInfo struct {
	// Count of documents matching the request filter, regardless of position.
	Count int64 `json:"count"`
	// Length of the returned page.
	Length   int           `json:"length"`
	Next     *NextPage     `json:"next"`
	Previous *PreviousPage `json:"previous"`
}

type NextPage struct {
	After string `json:"after"`
	Count int64  `json:"count"`
}

type PreviousPage struct {
	Before string `json:"before"`
	Count  int64  `json:"count"`
}

// HasNext reports whether documents follow the page.
func (p PageInfo) HasNext() bool {
	return p.Next != nil
}

// HasPrevious reports whether documents precede the page.
func (p PageInfo) HasPrevious() bool {
	return p.Previous != nil
}
