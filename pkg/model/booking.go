package model

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	Base         `bson:",inline"`
	Tour         string     `json:"tour,omitempty" bson:"tour" validate:"required,objectid"`
	User         string     `json:"user,omitempty" bson:"user" validate:"required,objectid"`
	Price        *float64   `json:"price,omitempty" bson:"price" validate:"required,min=0"`
	Participants int        `json:"participants,omitempty" bson:"participants" validate:"omitempty,min=1,max=50"`
	StartDate    *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	Status       string     `json:"status,omitempty" bson:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Paid         bool       `json:"paid" bson:"paid"`
}

func (b *Booking) ApplyDefaults() {
	if b.Participants == 0 {
		b.Participants = 1
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
}

type BookingUpdate struct {
	Price        *float64   `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,min=0"`
	Participants *int       `json:"participants,omitempty" bson:"participants,omitempty" validate:"omitempty,min=1,max=50"`
	StartDate    *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	Status       *string    `json:"status,omitempty" bson:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
	Paid         *bool      `json:"paid,omitempty" bson:"paid,omitempty"`
}

// BookingQuery narrows booking lists by the fields clients filter on most.
type BookingQuery struct {
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Paid   *bool  `json:"paid"`
}

var BookingMessages = map[string]string{
	"tour.required":    "Booking must belong to a tour!",
	"tour.objectid":    "Invalid tour ID",
	"user.required":    "Booking must belong to a user!",
	"user.objectid":    "Invalid user ID",
	"price.required":   "Booking must have a price.",
	"price.min":        "Price cannot be negative",
	"participants.min": "A booking needs at least one participant",
	"participants.max": "A booking can have at most 50 participants",
	"status.oneof":     "Status is either: pending, confirmed, cancelled",
}
