package model

import "time"

// Document is implemented by every stored resource through Base.
type Document interface {
	GetID() string
	SetID(id string)
	SetCreatedAt(t time.Time)
}

// Defaulter fills schema defaults before a resource is first stored.
type Defaulter interface {
	ApplyDefaults()
}

// Base holds the fields the store manages. It is embedded inline in every
// resource. Version is bumped on each update and never rendered.
type Base struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	Version   int        `json:"-" bson:"__v"`
}

func (b *Base) GetID() string {
	return b.ID
}

func (b *Base) SetID(id string) {
	b.ID = id
}

func (b *Base) SetCreatedAt(t time.Time) {
	t = t.UTC().Truncate(time.Millisecond)
	b.CreatedAt = &t
}

// IDParams is the route parameter set of every /:id route.
type IDParams struct {
	ID string `json:"id" validate:"required,objectid"`
}
