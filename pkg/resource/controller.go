package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	apperrors "voyageiq/pkg/errors"
	"voyageiq/pkg/events"
	httputil "voyageiq/pkg/http"
	"voyageiq/pkg/logger"
	"voyageiq/pkg/model"
	"voyageiq/pkg/query"
)

const (
	VerbCreated   = "created"
	VerbRetrieved = "retrieved"
	VerbUpdated   = "updated"
	VerbDeleted   = "deleted"
)

type Options struct {
	// Name is the display name used in messages, e.g. "Tour".
	Name string
	// ValidID rejects malformed ids before the store is called. Defaults to
	// the ObjectID hex check.
	ValidID      func(id string) bool
	Kinds        query.Kinds
	DefaultLimit int
	MaxLimit     int
	Publisher    events.Publisher
	Log          *logger.Logger
	Now          func() time.Time
}

type Page[T any] struct {
	Items      []T
	Pagination query.Pagination
}

// Controller implements create, list, get, update and delete for one
// resource kind. T is the stored resource, U its partial update form.
type Controller[T, U any] struct {
	store     Store[T]
	name      string
	event     string
	validID   func(string) bool
	queryOpts query.Options
	publisher events.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewController[T, U any](store Store[T], opts Options) *Controller[T, U] {
	if opts.ValidID == nil {
		opts.ValidID = primitive.IsValidObjectID
	}
	if opts.Kinds == nil {
		opts.Kinds = query.KindsOf(new(T))
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller[T, U]{
		store:   store,
		name:    opts.Name,
		event:   strings.ToLower(opts.Name),
		validID: opts.ValidID,
		queryOpts: query.Options{
			DefaultLimit: opts.DefaultLimit,
			MaxLimit:     opts.MaxLimit,
			Kinds:        opts.Kinds,
		},
		publisher: opts.Publisher,
		log:       opts.Log.With("resource", opts.Name),
		now:       opts.Now,
	}
}

func (c *Controller[T, U]) Name() string {
	return c.name
}

// Message renders the success message for verb, e.g. "Tour created successfully".
func (c *Controller[T, U]) Message(verb string) string {
	return fmt.Sprintf("%s %s successfully", c.name, verb)
}

// Create stores in as a new document. Id and creation time are always
// assigned here; values sent by the client are discarded.
func (c *Controller[T, U]) Create(ctx context.Context, in *T) (*T, error) {
	if in == nil {
		return nil, apperrors.BadRequest("Request body is required")
	}
	if doc, ok := any(in).(model.Document); ok {
		doc.SetID("")
		doc.SetCreatedAt(c.now())
	}
	if d, ok := any(in).(model.Defaulter); ok {
		d.ApplyDefaults()
	}

	if err := c.store.Insert(ctx, in); err != nil {
		return nil, err
	}

	c.publish(ctx, events.ActionCreated, idOf(in), in)
	return in, nil
}

// List returns one page of documents matching values. scope is merged over
// the client filter and cannot be widened by it.
func (c *Controller[T, U]) List(ctx context.Context, values url.Values, scope map[string]any) (Page[T], error) {
	q, err := query.Parse(values, c.queryOpts)
	if err != nil {
		return Page[T]{}, err
	}
	for field, value := range scope {
		q.Filter[field] = value
	}

	var (
		items []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := c.store.Count(gctx, q.Filter)
		total = n
		return err
	})
	g.Go(func() error {
		found, err := c.store.Find(gctx, q)
		items = found
		return err
	})
	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}

	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Pagination: query.NewPagination(q.Page, q.Limit, total),
	}, nil
}

func (c *Controller[T, U]) Get(ctx context.Context, id string) (*T, error) {
	if !c.validID(id) {
		return nil, apperrors.InvalidID(c.name)
	}
	doc, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, c.notFound(err)
	}
	return doc, nil
}

// Update applies the fields set in in. An update without fields returns
// the current document unchanged.
func (c *Controller[T, U]) Update(ctx context.Context, id string, in *U) (*T, error) {
	if !c.validID(id) {
		return nil, apperrors.InvalidID(c.name)
	}

	var changes map[string]any
	if in != nil {
		var err error
		if changes, err = Changes(in); err != nil {
			return nil, apperrors.Internal("failed to encode update", err)
		}
	}
	if len(changes) == 0 {
		return c.Get(ctx, id)
	}

	doc, err := c.store.UpdateByID(ctx, id, changes)
	if err != nil {
		return nil, c.notFound(err)
	}

	c.publish(ctx, events.ActionUpdated, id, changes)
	return doc, nil
}

func (c *Controller[T, U]) Delete(ctx context.Context, id string) error {
	if !c.validID(id) {
		return apperrors.InvalidID(c.name)
	}
	if err := c.store.DeleteByID(ctx, id); err != nil {
		return c.notFound(err)
	}

	c.publish(ctx, events.ActionDeleted, id, nil)
	return nil
}

func (c *Controller[T, U]) notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperrors.NotFound(c.name)
	}
	return err
}

// publish never fails the request; a lost event is only logged.
func (c *Controller[T, U]) publish(ctx context.Context, action, id string, data any) {
	requestID := httputil.RequestIDFromContext(ctx)
	e := events.New(c.event, action, id, data).WithRequestID(requestID)
	if err := c.publisher.Publish(ctx, e); err != nil {
		c.log.Warn("Failed to publish change event",
			"event_type", e.Type,
			"resource_id", id,
			"request_id", requestID,
			"error", err,
		)
	}
}

// Changes encodes the set fields of an update DTO as a field map keyed by
// store names. Nil pointers and omitempty fields are left out.
func Changes(in any) (map[string]any, error) {
	if in == nil {
		return map[string]any{}, nil
	}
	raw, err := bson.Marshal(in)
	if err != nil {
		return nil, err
	}
	changes := make(map[string]any)
	if err := bson.Unmarshal(raw, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

func idOf(doc any) string {
	if d, ok := doc.(model.Document); ok {
		return d.GetID()
	}
	return ""
}
