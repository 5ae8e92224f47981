// Package api wires the tour, user, review and booking resources onto the
// generic resource layer.
package api

import (
	"errors"

	"github.com/julienschmidt/httprouter"

	"voyageiq/pkg/auth"
	"voyageiq/pkg/config"
	apperrors "voyageiq/pkg/errors"
	"voyageiq/pkg/events"
	httputil "voyageiq/pkg/http"
	"voyageiq/pkg/logger"
	"voyageiq/pkg/model"
	"voyageiq/pkg/resource"
	"voyageiq/pkg/validation"
)

const (
	BasePath = "/api/v1"

	TourCollection    = "tours"
	UserCollection    = "users"
	ReviewCollection  = "reviews"
	BookingCollection = "bookings"
)

type Stores struct {
	Tours    resource.Store[model.Tour]
	Users    resource.Store[model.User]
	Reviews  resource.Store[model.Review]
	Bookings resource.Store[model.Booking]
}

// MongoStores opens one collection per resource on the configured database.
func MongoStores(cfg *config.Config) Stores {
	return Stores{
		Tours:    resource.NewMongoStore[model.Tour](cfg, TourCollection),
		Users:    resource.NewMongoStore[model.User](cfg, UserCollection),
		Reviews:  resource.NewMongoStore[model.Review](cfg, ReviewCollection),
		Bookings: resource.NewMongoStore[model.Booking](cfg, BookingCollection),
	}
}

type Deps struct {
	Validator *validation.Validator
	Errors    *httputil.ErrorHandler
	// Auth guards the routes. Nil leaves every route public.
	Auth         *auth.Authenticator
	Publisher    events.Publisher
	Log          *logger.Logger
	DefaultLimit int
	MaxLimit     int
}

// API registers every resource route. It satisfies contracts.Handler.
type API struct {
	tours    *resource.Handler[model.Tour, model.TourUpdate]
	users    *resource.Handler[model.User, model.UserUpdate]
	reviews  *resource.Handler[model.Review, model.ReviewUpdate]
	bookings *resource.Handler[model.Booking, model.BookingUpdate]
}

func New(stores Stores, d Deps) *API {
	return &API{
		tours:    newTourHandler(stores.Tours, d),
		users:    newUserHandler(stores.Users, d),
		reviews:  newReviewHandler(stores.Reviews, d),
		bookings: newBookingHandler(stores.Bookings, d),
	}
}

func (a *API) RegisterRoutes(router *httprouter.Router) {
	a.tours.RegisterRoutes(router)
	a.users.RegisterRoutes(router)
	a.reviews.RegisterRoutes(router)
	a.bookings.RegisterRoutes(router)
}

// NewAuthenticator verifies session tokens against the users store.
func NewAuthenticator(cfg *config.Config, users resource.Store[model.User], errs *httputil.ErrorHandler) *auth.Authenticator {
	return auth.New(auth.Config{
		Secret:     cfg.JWTSecret,
		CookieName: cfg.JWTCookieName,
		Users:      users.FindByID,
		IsNotFound: userGone,
		OnError:    errs.Handle,
	})
}

// userGone treats a token whose id no longer resolves, or never could, as a
// deleted account.
func userGone(err error) bool {
	var castErr *apperrors.CastError
	return errors.Is(err, resource.ErrNotFound) || errors.As(err, &castErr)
}

func (d Deps) options(name string) resource.Options {
	return resource.Options{
		Name:         name,
		DefaultLimit: d.DefaultLimit,
		MaxLimit:     d.MaxLimit,
		Publisher:    d.Publisher,
		Log:          d.Log,
	}
}

// access maps an operation to the roles allowed to run it. An empty role
// list only requires a logged in user; operations missing from the map are
// public.
type access map[resource.Operation][]string

func (d Deps) guards(rules access) map[resource.Operation][]resource.Guard {
	guards := make(map[resource.Operation][]resource.Guard, len(rules))
	if d.Auth == nil {
		return guards
	}
	for op, roles := range rules {
		chain := []resource.Guard{d.Auth.Protect}
		if len(roles) > 0 {
			chain = append(chain, d.Auth.RestrictTo(roles...))
		}
		guards[op] = chain
	}
	return guards
}

func (d Deps) tourParams() *validation.Schema[model.IDParams] {
	return validation.NewSchema[model.IDParams](d.Validator, "Tour", validation.Messages{"id": "Invalid Tour ID"})
}

var everyOperation = []resource.Operation{
	resource.OpCreate,
	resource.OpList,
	resource.OpGet,
	resource.OpUpdate,
	resource.OpDelete,
}

func restrictAll(roles ...string) access {
	rules := make(access, len(everyOperation))
	for _, op := range everyOperation {
		rules[op] = roles
	}
	return rules
}
