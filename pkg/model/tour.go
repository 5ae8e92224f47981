package model

import (
	"strings"
	"time"

	"voyageiq/pkg/sanitizer"
)

const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"

	DefaultRatingsAverage = 4.5
)

// Tour is a bookable tour. Price is a pointer so that a free tour (0) is told
// apart from a missing price.
type Tour struct {
	Base            `bson:",inline"`
	Name            string      `json:"name,omitempty" bson:"name" validate:"required,min=10,max=40"`
	Destination     string      `json:"destination,omitempty" bson:"destination,omitempty" validate:"omitempty,max=100"`
	Duration        int         `json:"duration,omitempty" bson:"duration" validate:"required,min=1"`
	MaxGroupSize    int         `json:"maxGroupSize,omitempty" bson:"maxGroupSize" validate:"required,min=1"`
	Difficulty      string      `json:"difficulty,omitempty" bson:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64     `json:"ratingsAverage,omitempty" bson:"ratingsAverage" validate:"omitempty,min=1,max=5"`
	RatingsQuantity int         `json:"ratingsQuantity,omitempty" bson:"ratingsQuantity" validate:"min=0"`
	Price           *float64    `json:"price,omitempty" bson:"price" validate:"required,min=0"`
	PriceDiscount   float64     `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty" validate:"omitempty,min=0,ltfield=Price"`
	Summary         string      `json:"summary,omitempty" bson:"summary" validate:"required,max=200"`
	Description     string      `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	ImageCover      string      `json:"imageCover,omitempty" bson:"imageCover,omitempty"`
	Images          []string    `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,max=20"`
	StartDates      []time.Time `json:"startDates,omitempty" bson:"startDates,omitempty"`
}

func (t *Tour) ApplyDefaults() {
	if t.RatingsAverage == 0 {
		t.RatingsAverage = DefaultRatingsAverage
	}
}

// TourUpdate is the partial form of Tour. PriceDiscount is not checked
// against the stored price.
type TourUpdate struct {
	Name           *string     `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,min=10,max=40"`
	Destination    *string     `json:"destination,omitempty" bson:"destination,omitempty" validate:"omitempty,max=100"`
	Duration       *int        `json:"duration,omitempty" bson:"duration,omitempty" validate:"omitempty,min=1"`
	MaxGroupSize   *int        `json:"maxGroupSize,omitempty" bson:"maxGroupSize,omitempty" validate:"omitempty,min=1"`
	Difficulty     *string     `json:"difficulty,omitempty" bson:"difficulty,omitempty" validate:"omitempty,oneof=easy medium difficult"`
	RatingsAverage *float64    `json:"ratingsAverage,omitempty" bson:"ratingsAverage,omitempty" validate:"omitempty,min=1,max=5"`
	Price          *float64    `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,min=0"`
	PriceDiscount  *float64    `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty" validate:"omitempty,min=0"`
	Summary        *string     `json:"summary,omitempty" bson:"summary,omitempty" validate:"omitempty,max=200"`
	Description    *string     `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	ImageCover     *string     `json:"imageCover,omitempty" bson:"imageCover,omitempty"`
	Images         []string    `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,max=20"`
	StartDates     []time.Time `json:"startDates,omitempty" bson:"startDates,omitempty"`
}

var TourMessages = map[string]string{
	"name.required":         "A tour must have a name",
	"name.min":              "A tour name must have at least 10 characters",
	"name.max":              "A tour name must have at most 40 characters",
	"duration.required":     "A tour must have a duration",
	"maxGroupSize.required": "A tour must have a group size",
	"difficulty.required":   "A tour must have a difficulty",
	"difficulty.oneof":      "Difficulty is either: easy, medium, difficult",
	"ratingsAverage.min":    "Rating must be above 1.0",
	"ratingsAverage.max":    "Rating must be below 5.0",
	"price.required":        "A tour must have a price",
	"price.min":             "Price cannot be negative",
	"priceDiscount.ltfield": "Discount price should be below regular price",
	"summary.required":      "A tour must have a summary",
}

func (t *Tour) Normalize() {
	t.Name = sanitizer.Text(t.Name)
	t.Destination = sanitizer.Text(t.Destination)
	t.Summary = sanitizer.Text(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	t.Images = sanitizer.Slice(t.Images, sanitizer.Text)
}

func (t *TourUpdate) Normalize() {
	sanitizer.TextPtr(t.Name)
	sanitizer.TextPtr(t.Destination)
	sanitizer.TextPtr(t.Summary)
	t.Images = sanitizer.Slice(t.Images, sanitizer.Text)
}
