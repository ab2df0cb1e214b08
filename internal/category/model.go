package category

import "time"

// Category is a distinct product category with the number of products
// the caller can see in it.
type Category struct {
	Name     string
	Products int
}

type ListParams struct {
	// Filter is matched case-insensitively anywhere in the name.
	Filter string
	Limit  int
	Page   int

	IncludeExpired bool
	Today          time.Time
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.Limit
}
