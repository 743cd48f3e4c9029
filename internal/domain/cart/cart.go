package cart

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// MaxQuantity caps the quantity of a single line item.
const MaxQuantity = 9999

// QuantityError reports a requested quantity above MaxQuantity.
type QuantityError struct {
	Quantity int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("quantity %d exceeds maximum of %d", e.Quantity, MaxQuantity)
}

// clampQuantity bounds q to [1, MaxQuantity].
func clampQuantity(q int) int {
	return min(max(q, 1), MaxQuantity)
}

// LineItem is one product entry in the cart with its aggregated quantity.
type LineItem struct {
	ID        string
	Title     string
	Price     decimal.Decimal
	Thumbnail string
	Quantity  int
}

// Subtotal returns Price * Quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is the complete cart contents. TotalQuantity is always derived from
// Items and never updated incrementally.
type State struct {
	Items         []LineItem
	TotalQuantity int
}

// NewState builds a State from items, recomputing TotalQuantity.
func NewState(items []LineItem) State {
	items = slices.Clone(items)
	return State{
		Items:         items,
		TotalQuantity: TotalQuantity(items),
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return NewState(s.Items)
}

// TotalPrice returns the sum of Price * Quantity over all items.
func (s State) TotalPrice() decimal.Decimal {
	return TotalPrice(s.Items)
}

// Find returns the index of the item with the given product id, or -1.
func (s State) Find(productID string) int {
	return slices.IndexFunc(s.Items, func(i LineItem) bool {
		return i.ID == productID
	})
}

// TotalQuantity sums item quantities.
func TotalQuantity(items []LineItem) int {
	total := 0
	for _, i := range items {
		total += i.Quantity
	}
	return total
}

// TotalPrice sums Price * Quantity.
func TotalPrice(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, i := range items {
		total = total.Add(i.Subtotal())
	}
	return total
}
