package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hansade2005/shopsavvy/internal/records"
)

var ErrNoEditableFields = errors.New("no editable profile fields provided")

// Fields a user may change about themselves. Everything else on a
// profile record is owned by other parts of the system.
var editableFields = []string{"name", "bio", "avatar_url"}

// Service reads and upserts user profiles in the record store.
type Service struct {
	store records.Store
}

func NewService(store records.Store) *Service {
	return &Service{store: store}
}

// Get returns the stored profile for the user. A user without a
// stored profile gets an empty one carrying just their id; that is
// not an error.
func (s *Service) Get(ctx context.Context, userID string) (records.Record, error) {
	recs, err := s.store.Select(ctx, records.CollectionProfiles, records.Filter{"id": userID})
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", userID, err)
	}
	if len(recs) == 0 {
		return records.Record{"id": userID}, nil
	}
	return recs[0], nil
}

// Update upserts the editable fields of the user's profile. Keys
// outside the editable set are dropped; a request carrying none of
// them is rejected.
func (s *Service) Update(ctx context.Context, userID string, changes records.Record) (records.Record, error) {
	filtered := records.Record{}
	for _, field := range editableFields {
		if v, ok := changes[field]; ok {
			filtered[field] = v
		}
	}
	if len(filtered) == 0 {
		return nil, ErrNoEditableFields
	}

	updated, err := s.store.Update(ctx, records.CollectionProfiles, userID, filtered)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, records.ErrNotFound) {
		return nil, fmt.Errorf("update profile %s: %w", userID, err)
	}

	filtered["id"] = userID
	created, err := s.store.Insert(ctx, records.CollectionProfiles, filtered)
	if err != nil {
		return nil, fmt.Errorf("create profile %s: %w", userID, err)
	}
	return created, nil
}
