package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hansade2005/shopsavvy/internal/records"
)

func TestGet_NoStoredProfile(t *testing.T) {
	svc := NewService(records.NewMemoryStore())

	rec, err := svc.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.ID())
	assert.Len(t, rec, 1)
}

func TestUpdate_CreatesThenUpdates(t *testing.T) {
	store := records.NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Update(ctx, "user-1", records.Record{
		"name": "Sam",
		"bio":  "Likes headphones",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", created.ID())
	assert.Equal(t, "Sam", created["name"])

	updated, err := svc.Update(ctx, "user-1", records.Record{
		"avatar_url": "https://img.example.com/sam.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Likes headphones", updated["bio"])
	assert.Equal(t, "https://img.example.com/sam.png", updated["avatar_url"])

	// Still one record in the collection
	recs, err := store.Select(ctx, records.CollectionProfiles, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	got, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Sam", got["name"])
}

func TestUpdate_DropsNonEditableFields(t *testing.T) {
	svc := NewService(records.NewMemoryStore())

	rec, err := svc.Update(context.Background(), "user-1", records.Record{
		"name":     "Sam",
		"id":       "someone-else",
		"is_admin": true,
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.ID())
	assert.NotContains(t, rec, "is_admin")
}

func TestUpdate_NoEditableFields(t *testing.T) {
	svc := NewService(records.NewMemoryStore())

	_, err := svc.Update(context.Background(), "user-1", records.Record{"id": "x"})

	assert.ErrorIs(t, err, ErrNoEditableFields)
}
