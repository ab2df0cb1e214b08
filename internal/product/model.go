package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryFood is the only perishable category; its items disappear from the
// public catalog once their expiry date is reached.
const CategoryFood = "Comida"

type Product struct {
	ID          uint
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Image       string
	ExpiresOn   *time.Time
	CreatedBy   *uint
	CreatedAt   time.Time
}

// ExpiredOn reports whether p is perishable and its expiry date is on or
// before day.
func (p *Product) ExpiredOn(day time.Time) bool {
	if p.Category != CategoryFood || p.ExpiresOn == nil {
		return false
	}
	y, m, d := p.ExpiresOn.Date()
	exp := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return !exp.After(day)
}

// ListOptions narrows a catalog listing.
type ListOptions struct {
	// IncludeExpired is set for admins.
	IncludeExpired bool
	Today          time.Time
	Category       string
}

// CatalogEntry is an in-stock product with its review aggregate, as fed to
// the chat assistant.
type CatalogEntry struct {
	Product
	AverageRating decimal.Decimal
	TotalReviews  int
}

type CreateParams struct {
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Image       string
	ExpiresOn   *time.Time
	CreatedBy   uint
}

// UpdateParams is a partial update; nil fields are left untouched.
type UpdateParams struct {
	ID          uint
	Title       *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Stock       *int
	Image       *string
	ExpiresOn   *time.Time
	// ClearExpiry removes the expiry date.
	ClearExpiry bool
}
