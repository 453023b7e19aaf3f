package entity

import "time"

type Product struct {
	ID           string  `json:"id" firestore:"id" bson:"_id"`
	Name         string  `json:"name" firestore:"name" bson:"name"`
	Description  string  `json:"description" firestore:"description" bson:"description"`
	Price        float64 `json:"price" firestore:"price" bson:"price"`
	Image        string  `json:"image,omitempty" firestore:"image,omitempty" bson:"image,omitempty"`
	Category     string  `json:"category" firestore:"category" bson:"category"`
	CountInStock int     `json:"countInStock" firestore:"countInStock" bson:"countInStock"`

	// Aggregates maintained by the review aggregator. RatingTotal is the sum
	// of all current review ratings; Rating is RatingTotal/NumReviews or 0.
	Rating      float64 `json:"rating" firestore:"rating" bson:"rating"`
	NumReviews  int     `json:"numReviews" firestore:"numReviews" bson:"numReviews"`
	RatingTotal int     `json:"-" firestore:"ratingTotal" bson:"ratingTotal"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

// SetRatingAggregate replaces the aggregates with the sum and count of the
// product's current reviews.
func (p *Product) SetRatingAggregate(total, count int) {
	if count <= 0 {
		p.NumReviews = 0
		p.RatingTotal = 0
		p.Rating = 0
		return
	}
	p.NumReviews = count
	p.RatingTotal = total
	p.Rating = float64(total) / float64(count)
}
