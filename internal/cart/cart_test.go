package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.RequireFromString("100"),
		ShippingFee:           decimal.RequireFromString("9.99"),
	}
}

func newTestStore() *Store {
	return NewStore(NewMemoryStorage(), "cart:test-user", testPricing())
}

func product(id string, price string) Product {
	return Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		ImageURL: "https://example.com/" + id + ".jpg",
	}
}

func TestStore_AddItem_NewLine(t *testing.T) {
	store := newTestStore()

	store.AddItem(product("p1", "10"))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestStore_AddItem_DuplicateIncrementsQuantity(t *testing.T) {
	store := newTestStore()

	store.AddItem(product("p1", "10"))
	store.AddItem(product("p1", "10"))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, store.Totals().Subtotal.Equal(decimal.RequireFromString("20")),
		"subtotal should be 20, got %s", store.Totals().Subtotal)
}

func TestStore_NoDuplicateLines(t *testing.T) {
	store := newTestStore()

	// Arbitrary mutation sequence must never produce two lines with
	// the same product id.
	store.AddItem(product("p1", "10"))
	store.AddItem(product("p2", "5"))
	store.AddItem(product("p1", "10"))
	store.SetQuantity("p2", 4)
	store.RemoveItem("p1")
	store.AddItem(product("p1", "10"))
	store.AddItem(product("p1", "10"))

	seen := make(map[string]bool)
	for _, line := range store.Lines() {
		assert.False(t, seen[line.ProductID], "duplicate line for %s", line.ProductID)
		seen[line.ProductID] = true
	}
}

func TestStore_RemoveItem_AbsentIsNoop(t *testing.T) {
	store := newTestStore()
	store.AddItem(product("p1", "10"))

	store.RemoveItem("does-not-exist")

	assert.Len(t, store.Lines(), 1)
}

func TestStore_SetQuantity(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		wantLines int
		wantQty   int
	}{
		{"exact set", 5, 1, 5},
		{"set to one", 1, 1, 1},
		{"zero removes", 0, 0, 0},
		{"negative removes", -1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			store.AddItem(product("p1", "10"))

			store.SetQuantity("p1", tt.quantity)

			lines := store.Lines()
			require.Len(t, lines, tt.wantLines)
			if tt.wantLines > 0 {
				assert.Equal(t, tt.wantQty, lines[0].Quantity)
			}
		})
	}
}

func TestStore_SetQuantity_AbsentLineIsNoop(t *testing.T) {
	store := newTestStore()

	store.SetQuantity("ghost", 3)

	assert.Empty(t, store.Lines())
}

func TestStore_SetQuantity_NotAdditive(t *testing.T) {
	store := newTestStore()
	store.AddItem(product("p1", "10"))
	store.AddItem(product("p1", "10"))

	store.SetQuantity("p1", 2)

	assert.Equal(t, 2, store.Lines()[0].Quantity)
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore()
	store.AddItem(product("p1", "10"))
	store.AddItem(product("p2", "20"))

	store.Clear()

	assert.Empty(t, store.Lines())
	assert.Equal(t, 0, store.Totals().ItemCount)
}

func TestStore_Totals_EmptyCart(t *testing.T) {
	store := newTestStore()

	totals := store.Totals()

	assert.Equal(t, 0, totals.ItemCount)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Shipping.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
}

func TestStore_Totals_Idempotent(t *testing.T) {
	store := newTestStore()
	store.AddItem(product("p1", "19.99"))
	store.SetQuantity("p1", 3)

	first := store.Totals()
	second := store.Totals()

	assert.Equal(t, first.ItemCount, second.ItemCount)
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
}

func TestStore_Totals_FreeShippingThreshold(t *testing.T) {
	tests := []struct {
		name         string
		price        string
		wantShipping string
	}{
		{"just over threshold ships free", "100.01", "0"},
		{"just under threshold pays flat fee", "99.99", "9.99"},
		{"exactly at threshold pays flat fee", "100", "9.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			store.AddItem(product("p1", tt.price))

			totals := store.Totals()

			want := decimal.RequireFromString(tt.wantShipping)
			assert.True(t, totals.Shipping.Equal(want),
				"shipping = %s, want %s", totals.Shipping, want)
			assert.True(t, totals.GrandTotal.Equal(totals.Subtotal.Add(totals.Shipping)))
		})
	}
}

func TestStore_Totals_SubtotalSumsLines(t *testing.T) {
	store := newTestStore()
	store.AddItem(product("p1", "199.99"))
	store.SetQuantity("p1", 2)
	store.AddItem(product("p2", "299.99"))
	store.AddItem(product("p3", "89.99"))
	store.SetQuantity("p3", 3)

	totals := store.Totals()

	assert.Equal(t, 6, totals.ItemCount)
	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("969.94")),
		"subtotal = %s", totals.Subtotal)
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()

	store := NewStore(storage, "cart:u1", testPricing())
	store.AddItem(product("p1", "10.50"))
	store.AddItem(product("p2", "3.25"))
	store.SetQuantity("p2", 4)

	// Simulate a reload: a new store over the same storage key.
	reloaded := NewStore(storage, "cart:u1", testPricing())

	require.Equal(t, store.Lines(), reloaded.Lines())
	assert.True(t, store.Totals().GrandTotal.Equal(reloaded.Totals().GrandTotal))
}

func TestStore_LoadCorruptBlobStartsEmpty(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set("cart:u1", "{not json"))

	store := NewStore(storage, "cart:u1", testPricing())

	assert.Empty(t, store.Lines())
}

// failingStorage rejects every write.
type failingStorage struct{}

func (failingStorage) Get(string) (string, bool, error) { return "", false, nil }
func (failingStorage) Set(string, string) error         { return errors.New("quota exceeded") }
func (failingStorage) Delete(string) error              { return nil }

func TestStore_WriteFailureKeepsInMemoryCart(t *testing.T) {
	store := NewStore(failingStorage{}, "cart:u1", testPricing())

	store.AddItem(product("p1", "10"))
	store.AddItem(product("p2", "20"))

	// The mutation succeeds in memory even though persistence failed.
	assert.Len(t, store.Lines(), 2)
	assert.Equal(t, 2, store.Totals().ItemCount)
}

func TestStore_SnapshotImmuneToLaterMutations(t *testing.T) {
	store := newTestStore()
	store.AddItem(product("p1", "10"))

	snapshot := store.Snapshot()
	store.SetQuantity("p1", 7)
	store.AddItem(product("p2", "5"))

	require.Len(t, snapshot, 1)
	assert.Equal(t, 1, snapshot[0].Quantity)
}

func TestManager_SameOwnerSameStore(t *testing.T) {
	manager := NewManager(NewMemoryStorage(), testPricing())

	a := manager.Get("u1")
	b := manager.Get("u1")
	c := manager.Get("u2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
