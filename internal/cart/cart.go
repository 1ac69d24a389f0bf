package cart

import (
	"log"
	"sync"

	"github.com/shopspring/decimal"
)

// Line is one product's entry in the cart. A cart never holds two
// lines for the same product and a line's quantity is always >= 1.
type Line struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl"`
}

// Product carries the cached display fields copied into a new line.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	ImageURL string
}

// Totals are derived fresh from the current line set on every call.
type Totals struct {
	ItemCount  int             `json:"item_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Pricing holds the shipping rules applied when deriving totals.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// Store is the authoritative cart for one owner. Lines keep their
// insertion order. Every mutation persists the full cart through the
// storage backend; persistence failures are swallowed because the
// in-memory cart stays authoritative for the current process.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	storage Storage
	key     string
	pricing Pricing
}

// NewStore creates a cart store and attempts to load a previously
// persisted cart. A missing or unparseable blob starts the cart
// empty; neither is an error to the caller.
func NewStore(storage Storage, key string, pricing Pricing) *Store {
	s := &Store{storage: storage, key: key, pricing: pricing}
	s.load()
	return s
}

// AddItem inserts a new line with quantity 1, or increments the
// quantity of an existing line for the same product.
func (s *Store) AddItem(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == p.ID {
			s.lines[i].Quantity++
			s.persist()
			return
		}
	}

	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
		ImageURL:  p.ImageURL,
	})
	s.persist()
}

// RemoveItem deletes the line for the product. Removing an absent
// product is a no-op, not an error.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
	s.persist()
}

// SetQuantity sets a line's quantity exactly. A quantity below 1
// removes the line. Absent lines are left untouched.
func (s *Store) SetQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.removeLocked(productID)
		s.persist()
		return
	}

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			s.persist()
			return
		}
	}
}

// Clear removes all lines.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.persist()
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Snapshot is an alias of Lines used by checkout: the returned copy
// is immune to later cart mutations.
func (s *Store) Snapshot() []Line {
	return s.Lines()
}

// Totals recomputes the derived totals from the current line set.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Totals{
		Subtotal:   decimal.Zero,
		Shipping:   decimal.Zero,
		GrandTotal: decimal.Zero,
	}
	for _, line := range s.lines {
		t.ItemCount += line.Quantity
		t.Subtotal = t.Subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	if t.ItemCount > 0 && !t.Subtotal.GreaterThan(s.pricing.FreeShippingThreshold) {
		t.Shipping = s.pricing.ShippingFee
	}
	t.GrandTotal = t.Subtotal.Add(t.Shipping)
	return t
}

func (s *Store) removeLocked(productID string) {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

func (s *Store) snapshotLocked() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) load() {
	if s.storage == nil {
		return
	}
	lines, err := loadLines(s.storage, s.key)
	if err != nil {
		log.Printf("[Cart] Discarding persisted cart %s: %v", s.key, err)
		return
	}
	s.lines = lines
}

// persist writes the full cart synchronously. Failures are logged
// only; the cart is a convenience cache, not the source of truth for
// financial state.
func (s *Store) persist() {
	if s.storage == nil {
		return
	}
	if err := saveLines(s.storage, s.key, s.lines); err != nil {
		log.Printf("[Cart] Failed to persist cart %s: %v", s.key, err)
	}
}
