package model

import "strings"

type Review struct {
	Base   `bson:",inline"`
	Review string  `json:"review,omitempty" bson:"review" validate:"required,max=1000"`
	Rating float64 `json:"rating,omitempty" bson:"rating" validate:"required,min=1,max=5"`
	Tour   string  `json:"tour,omitempty" bson:"tour" validate:"required,objectid"`
	User   string  `json:"user,omitempty" bson:"user" validate:"required,objectid"`
}

// ReviewUpdate cannot move a review to another tour or author.
type ReviewUpdate struct {
	Review *string  `json:"review,omitempty" bson:"review,omitempty" validate:"omitempty,max=1000"`
	Rating *float64 `json:"rating,omitempty" bson:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

var ReviewMessages = map[string]string{
	"review.required": "Review can not be empty!",
	"rating.required": "A review must have a rating",
	"rating.min":      "Rating must be between 1 and 5",
	"rating.max":      "Rating must be between 1 and 5",
	"tour.required":   "Review must belong to a tour.",
	"tour.objectid":   "Invalid tour ID",
	"user.required":   "Review must belong to a user",
	"user.objectid":   "Invalid user ID",
}

func (r *Review) Normalize() {
	r.Review = strings.TrimSpace(r.Review)
}
