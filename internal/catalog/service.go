package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hansade2005/shopsavvy/internal/records"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrAlreadySubscribed = errors.New("email already subscribed")
	ErrMissingEmail      = errors.New("email is required")
)

// Service reads the storefront's public catalog collections.
type Service struct {
	store records.Store
}

func NewService(store records.Store) *Service {
	return &Service{store: store}
}

// ListProducts returns all products, optionally filtered by category.
func (s *Service) ListProducts(ctx context.Context, categoryID string) ([]records.Record, error) {
	filter := records.Filter{}
	if categoryID != "" {
		filter["category_id"] = categoryID
	}

	products, err := s.store.Select(ctx, records.CollectionProducts, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct fetches one product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (records.Record, error) {
	matches, err := s.store.Select(ctx, records.CollectionProducts, records.Filter{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	if len(matches) == 0 {
		return nil, ErrProductNotFound
	}
	return matches[0], nil
}

// ListCategories returns all product categories.
func (s *Service) ListCategories(ctx context.Context) ([]records.Record, error) {
	categories, err := s.store.Select(ctx, records.CollectionCategories, nil)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// AverageRating is the mean of a product's review ratings, 0 when
// the product has no reviews.
func (s *Service) AverageRating(ctx context.Context, productID string) (float64, error) {
	reviews, err := s.store.Select(ctx, records.CollectionReviews, records.Filter{"product_id": productID})
	if err != nil {
		return 0, fmt.Errorf("reviews for %s: %w", productID, err)
	}
	if len(reviews) == 0 {
		return 0, nil
	}

	var sum float64
	for _, review := range reviews {
		sum += ratingOf(review)
	}
	return sum / float64(len(reviews)), nil
}

// SubscribeNewsletter adds an email to the newsletter list, rejecting
// duplicates.
func (s *Service) SubscribeNewsletter(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingEmail
	}

	existing, err := s.store.Select(ctx, records.CollectionNewsletter, records.Filter{"email": email})
	if err != nil {
		return fmt.Errorf("newsletter lookup: %w", err)
	}
	if len(existing) > 0 {
		return ErrAlreadySubscribed
	}

	_, err = s.store.Insert(ctx, records.CollectionNewsletter, records.Record{
		"email":         email,
		"subscribed_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("newsletter subscribe: %w", err)
	}
	return nil
}

// ratingOf tolerates both float64 (JSON numbers) and int ratings.
func ratingOf(review records.Record) float64 {
	switch v := review["rating"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
