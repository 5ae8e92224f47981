package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "voyageiq/pkg/errors"
	"voyageiq/pkg/logger"
	"voyageiq/pkg/sanitizer"
	"voyageiq/pkg/validation"
)

func ptr[T any](v T) *T { return &v }

func validTour() *Tour {
	return &Tour{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   DifficultyEasy,
		Price:        ptr(397.0),
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
	}
}

func violationsOf(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		return nil
	}
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	return appErr.Errors
}

func TestTour_Validation(t *testing.T) {
	v := validation.New(logger.Discard())
	schema := validation.NewSchema[*Tour](v, "Tour", TourMessages)

	tests := []struct {
		name   string
		modify func(*Tour)
		want   []string
	}{
		{
			name:   "valid tour",
			modify: func(*Tour) {},
		},
		{
			name:   "negative price",
			modify: func(tour *Tour) { tour.Price = ptr(-1.0) },
			want:   []string{"Price cannot be negative"},
		},
		{
			name:   "free tour",
			modify: func(tour *Tour) { tour.Price = ptr(0.0) },
		},
		{
			name:   "missing price",
			modify: func(tour *Tour) { tour.Price = nil },
			want:   []string{"A tour must have a price"},
		},
		{
			name:   "discount above price",
			modify: func(tour *Tour) { tour.PriceDiscount = 500 },
			want:   []string{"Discount price should be below regular price"},
		},
		{
			name:   "short name",
			modify: func(tour *Tour) { tour.Name = "Hiker" },
			want:   []string{"A tour name must have at least 10 characters"},
		},
		{
			name:   "unknown difficulty",
			modify: func(tour *Tour) { tour.Difficulty = "extreme" },
			want:   []string{"Difficulty is either: easy, medium, difficult"},
		},
		{
			name: "several problems at once",
			modify: func(tour *Tour) {
				tour.Name = ""
				tour.Summary = ""
				tour.RatingsAverage = 7
			},
			want: []string{"A tour must have a name", "Rating must be below 5.0", "A tour must have a summary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour := validTour()
			tt.modify(tour)
			assert.Equal(t, tt.want, violationsOf(t, schema.Validate(tour)))
		})
	}
}

func TestTourUpdate_Validation(t *testing.T) {
	v := validation.New(logger.Discard())
	schema := validation.NewSchema[*TourUpdate](v, "Tour", TourMessages)

	discount := 50.0
	assert.NoError(t, schema.Validate(&TourUpdate{PriceDiscount: &discount}))

	price := -3.0
	assert.Equal(t, []string{"Price cannot be negative"}, violationsOf(t, schema.Validate(&TourUpdate{Price: &price})))

	assert.NoError(t, schema.Validate(&TourUpdate{}))
}

func TestUser_Validation(t *testing.T) {
	v := validation.New(logger.Discard())
	schema := validation.NewSchema[*User](v, "User", UserMessages)

	tests := []struct {
		name string
		user User
		want []string
	}{
		{
			name: "valid user",
			user: User{Name: "Laura Wilson", Email: "laura@example.io", Phone: "+14155552671"},
		},
		{
			name: "bad email",
			user: User{Name: "Laura Wilson", Email: "laura"},
			want: []string{"Please provide a valid email"},
		},
		{
			name: "bad phone and role",
			user: User{Name: "Laura Wilson", Email: "laura@example.io", Phone: "555", Role: "owner"},
			want: []string{"Please provide a valid phone number", "Role is either: user, guide, lead-guide, admin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			assert.Equal(t, tt.want, violationsOf(t, schema.Validate(&user)))
		})
	}
}

func TestReviewAndBooking_Validation(t *testing.T) {
	v := validation.New(logger.Discard())
	reviews := validation.NewSchema[*Review](v, "Review", ReviewMessages)
	bookings := validation.NewSchema[*Booking](v, "Booking", BookingMessages)

	tourID := "5c88fa8cf4afda39709c2951"
	userID := "5c8a1d5b0190b214360dc057"

	assert.NoError(t, reviews.Validate(&Review{Review: "Amazing!", Rating: 5, Tour: tourID, User: userID}))
	assert.Equal(t,
		[]string{"Rating must be between 1 and 5", "Invalid tour ID"},
		violationsOf(t, reviews.Validate(&Review{Review: "Meh", Rating: 6, Tour: "abc", User: userID})),
	)

	assert.NoError(t, bookings.Validate(&Booking{Tour: tourID, User: userID, Price: ptr(997.0)}))
	assert.Equal(t,
		[]string{"A booking can have at most 50 participants", "Status is either: pending, confirmed, cancelled"},
		violationsOf(t, bookings.Validate(&Booking{Tour: tourID, User: userID, Price: ptr(997.0), Participants: 51, Status: "lost"})),
	)
}

func TestBooking_Price(t *testing.T) {
	v := validation.New(logger.Discard())
	bookings := validation.NewSchema[*Booking](v, "Booking", BookingMessages)

	tests := []struct {
		name  string
		price *float64
		want  []string
	}{
		{name: "free", price: ptr(0.0)},
		{name: "paid", price: ptr(1497.5)},
		{name: "negative", price: ptr(-1.0), want: []string{"Price cannot be negative"}},
		{name: "missing", price: nil, want: []string{"Booking must have a price."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := &Booking{Tour: "5c88fa8cf4afda39709c2951", User: "5c8a1d5b0190b214360dc057", Price: tt.price}
			assert.Equal(t, tt.want, violationsOf(t, bookings.Validate(booking)))
		})
	}
}

func TestTour_FreePriceRendersZero(t *testing.T) {
	tour := validTour()
	tour.Price = ptr(0.0)

	raw, err := json.Marshal(tour)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":0`)
}

func TestApplyDefaults(t *testing.T) {
	tour := validTour()
	tour.ApplyDefaults()
	assert.Equal(t, DefaultRatingsAverage, tour.RatingsAverage)

	user := &User{}
	user.ApplyDefaults()
	assert.Equal(t, RoleUser, user.Role)
	require.NotNil(t, user.Active)
	assert.True(t, *user.Active)

	booking := &Booking{Participants: 3}
	booking.ApplyDefaults()
	assert.Equal(t, 3, booking.Participants)
	assert.Equal(t, BookingPending, booking.Status)
}

func TestBase_JSON(t *testing.T) {
	tour := validTour()
	tour.SetID("5c88fa8cf4afda39709c2951")
	tour.SetCreatedAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	tour.Version = 4

	raw, err := json.Marshal(tour)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "5c88fa8cf4afda39709c2951", out["id"])
	assert.Equal(t, "2026-03-01T10:00:00Z", out["createdAt"])
	assert.NotContains(t, out, "__v")
	assert.NotContains(t, out, "Version")
}

func TestBase_ImplementsDocument(t *testing.T) {
	var _ Document = &Tour{}
	var _ Document = &User{}
	var _ Document = &Review{}
	var _ Document = &Booking{}
	var _ Defaulter = &Tour{}
}

func TestNormalize(t *testing.T) {
	tour := &Tour{Name: "  The   Forest Hiker ", Images: []string{"a.jpg", " a.jpg", ""}}
	tour.Normalize()
	assert.Equal(t, "The Forest Hiker", tour.Name)
	assert.Equal(t, []string{"a.jpg"}, tour.Images)

	user := &User{Name: " Laura ", Email: " Laura@Example.IO", Phone: "(650) 253-0000"}
	user.Normalize()
	assert.Equal(t, "Laura", user.Name)
	assert.Equal(t, "laura@example.io", user.Email)
	assert.Equal(t, "+16502530000", user.Phone)

	email := "LEE@EXAMPLE.COM"
	update := &UserUpdate{Email: &email}
	update.Normalize()
	assert.Equal(t, "lee@example.com", *update.Email)
	assert.Nil(t, update.Phone)

	var _ sanitizer.Normalizer = &TourUpdate{}
	var _ sanitizer.Normalizer = &Review{}
}
