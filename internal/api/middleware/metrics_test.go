package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/cart/items/p1", "/api/cart/items/:id"},
		{"/api/products/p1", "/api/products/:id"},
		{"/api/products/p1/rating", "/api/products/:id/rating"},
		{"/api/admin/records/products/abc-123", "/api/admin/records/products/:id"},
		{"/api/admin/records/products", "/api/admin/records/products"},
		{"/api/cart", "/api/cart"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, routeLabel(tt.path), tt.path)
	}
}
