package records

import (
	"context"
	"errors"
)

// Collections the storefront reads and writes. The external schema
// behind them is owned by the hosted backend, not this service.
const (
	CollectionProducts   = "products"
	CollectionOrders     = "orders"
	CollectionCategories = "categories"
	CollectionReviews    = "reviews"
	CollectionProfiles   = "profiles"
	CollectionNewsletter = "newsletter_subscribers"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Record is one document in a named collection. Every record carries
// an "id" field.
type Record map[string]any

// ID returns the record's id field, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Filter selects records whose fields equal the given values. An
// empty filter matches everything.
type Filter map[string]any

// Store is the narrow contract of the hosted data collaborator:
// generic record CRUD against named collections.
type Store interface {
	Insert(ctx context.Context, collection string, rec Record) (Record, error)
	Select(ctx context.Context, collection string, filter Filter) ([]Record, error)
	Update(ctx context.Context, collection, id string, changes Record) (Record, error)
	Delete(ctx context.Context, collection, id string) error
}
