package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hansade2005/shopsavvy/internal/records"
)

func seedStore(t *testing.T) *records.MemoryStore {
	t.Helper()
	store := records.NewMemoryStore()
	ctx := context.Background()

	seed := []records.Record{
		{"id": "p1", "name": "Headphones", "category_id": "audio"},
		{"id": "p2", "name": "Speaker", "category_id": "audio"},
		{"id": "p3", "name": "Watch", "category_id": "wearables"},
	}
	for _, rec := range seed {
		_, err := store.Insert(ctx, records.CollectionProducts, rec)
		require.NoError(t, err)
	}
	return store
}

func TestService_ListProducts(t *testing.T) {
	service := NewService(seedStore(t))
	ctx := context.Background()

	all, err := service.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	audio, err := service.ListProducts(ctx, "audio")
	require.NoError(t, err)
	assert.Len(t, audio, 2)
}

func TestService_GetProduct(t *testing.T) {
	service := NewService(seedStore(t))
	ctx := context.Background()

	product, err := service.GetProduct(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Speaker", product["name"])

	_, err = service.GetProduct(ctx, "ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_AverageRating(t *testing.T) {
	store := seedStore(t)
	service := NewService(store)
	ctx := context.Background()

	// No reviews yields 0, not an error.
	rating, err := service.AverageRating(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, rating)

	for _, r := range []float64{5, 4, 3} {
		_, err := store.Insert(ctx, records.CollectionReviews, records.Record{
			"product_id": "p1",
			"rating":     r,
		})
		require.NoError(t, err)
	}
	// A review for another product must not skew the mean.
	_, err = store.Insert(ctx, records.CollectionReviews, records.Record{
		"product_id": "p2",
		"rating":     1.0,
	})
	require.NoError(t, err)

	rating, err = service.AverageRating(ctx, "p1")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rating, 0.0001)
}

func TestService_SubscribeNewsletter(t *testing.T) {
	service := NewService(records.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, service.SubscribeNewsletter(ctx, "fan@example.com"))

	err := service.SubscribeNewsletter(ctx, "fan@example.com")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	assert.ErrorIs(t, service.SubscribeNewsletter(ctx, ""), ErrMissingEmail)
}
