package review

import "time"

type Review struct {
	ID        uint
	ProductID uint
	UserID    uint
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Reviewer names, filled by listings.
	FirstName string
	LastName  string
}

// Rating is a row of the product_ratings view.
type Rating struct {
	ProductID    uint
	Title        string
	TotalReviews int
	Average      float64
	FiveStars    int
	FourStars    int
	ThreeStars   int
	TwoStars     int
	OneStar      int
}

type Input struct {
	Rating  int
	Comment string
}
