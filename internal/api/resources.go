package api

import (
	"voyageiq/pkg/model"
	"voyageiq/pkg/resource"
	"voyageiq/pkg/validation"
)

const (
	TourPath    = BasePath + "/tours"
	UserPath    = BasePath + "/users"
	ReviewPath  = BasePath + "/reviews"
	BookingPath = BasePath + "/bookings"
)

// Tours are public to read; staff manage the catalogue.
func newTourHandler(store resource.Store[model.Tour], d Deps) *resource.Handler[model.Tour, model.TourUpdate] {
	staff := []string{model.RoleAdmin, model.RoleLeadGuide}
	return resource.NewHandler(resource.HandlerConfig[model.Tour, model.TourUpdate]{
		Path:       TourPath,
		Controller: resource.NewController[model.Tour, model.TourUpdate](store, d.options("Tour")),
		Create:     validation.NewSchema[*model.Tour](d.Validator, "Tour", model.TourMessages),
		Update:     validation.NewSchema[*model.TourUpdate](d.Validator, "Tour", model.TourMessages),
		Errors:     d.Errors,
		Log:        d.Log,
		Guards: d.guards(access{
			resource.OpCreate: staff,
			resource.OpUpdate: staff,
			resource.OpDelete: staff,
		}),
	})
}

func newUserHandler(store resource.Store[model.User], d Deps) *resource.Handler[model.User, model.UserUpdate] {
	return resource.NewHandler(resource.HandlerConfig[model.User, model.UserUpdate]{
		Path:       UserPath,
		Controller: resource.NewController[model.User, model.UserUpdate](store, d.options("User")),
		Create:     validation.NewSchema[*model.User](d.Validator, "User", model.UserMessages),
		Update:     validation.NewSchema[*model.UserUpdate](d.Validator, "User", model.UserMessages),
		Errors:     d.Errors,
		Log:        d.Log,
		Guards:     d.guards(restrictAll(model.RoleAdmin)),
	})
}

func newReviewHandler(store resource.Store[model.Review], d Deps) *resource.Handler[model.Review, model.ReviewUpdate] {
	return resource.NewHandler(resource.HandlerConfig[model.Review, model.ReviewUpdate]{
		Path:       ReviewPath,
		Controller: resource.NewController[model.Review, model.ReviewUpdate](store, d.options("Review")),
		Create:     validation.NewSchema[*model.Review](d.Validator, "Review", model.ReviewMessages),
		Update:     validation.NewSchema[*model.ReviewUpdate](d.Validator, "Review", model.ReviewMessages),
		Errors:     d.Errors,
		Log:        d.Log,
		Guards: d.guards(access{
			resource.OpCreate: {model.RoleUser},
			resource.OpList:   nil,
			resource.OpGet:    nil,
			resource.OpUpdate: {model.RoleUser, model.RoleAdmin},
			resource.OpDelete: {model.RoleUser, model.RoleAdmin},
		}),
		Nested: []resource.Nested{
			{ParentPath: TourPath, ParentField: "tour", Params: d.tourParams()},
		},
	})
}

func newBookingHandler(store resource.Store[model.Booking], d Deps) *resource.Handler[model.Booking, model.BookingUpdate] {
	guards := d.guards(restrictAll(model.RoleAdmin, model.RoleLeadGuide))
	filters := validation.NewSchema[model.BookingQuery](d.Validator, "Booking", model.BookingMessages)
	guards[resource.OpList] = append(guards[resource.OpList], validation.Query(filters, d.Errors.Handle))

	return resource.NewHandler(resource.HandlerConfig[model.Booking, model.BookingUpdate]{
		Path:       BookingPath,
		Controller: resource.NewController[model.Booking, model.BookingUpdate](store, d.options("Booking")),
		Create:     validation.NewSchema[*model.Booking](d.Validator, "Booking", model.BookingMessages),
		Update:     validation.NewSchema[*model.BookingUpdate](d.Validator, "Booking", model.BookingMessages),
		Errors:     d.Errors,
		Log:        d.Log,
		Guards:     guards,
		Nested: []resource.Nested{
			{ParentPath: TourPath, ParentField: "tour", Params: d.tourParams()},
		},
	})
}
