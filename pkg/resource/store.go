package resource

import (
	"context"
	"errors"

	"voyageiq/pkg/query"
)

var ErrNotFound = errors.New("document not found")

// Store persists one resource kind. Implementations return ErrNotFound
// (possibly wrapped) when the addressed document does not exist.
type Store[T any] interface {
	// Insert assigns the new document's id.
	Insert(ctx context.Context, doc *T) error
	Find(ctx context.Context, q query.Descriptor) ([]T, error)
	Count(ctx context.Context, filter map[string]any) (int64, error)
	FindByID(ctx context.Context, id string) (*T, error)
	// UpdateByID applies changes with $set semantics, bumps the version and
	// returns the updated document.
	UpdateByID(ctx context.Context, id string, changes map[string]any) (*T, error)
	DeleteByID(ctx context.Context, id string) error
}
