package cart

import "slices"

// Command is one of AddItem, UpdateQuantity, RemoveItem or Clear.
type Command interface {
	command()
}

// AddItem merges Item into the cart. A non-positive Quantity falls back to
// Item.Quantity, then to 1. The merged quantity saturates at MaxQuantity.
type AddItem struct {
	Item     LineItem
	Quantity int
}

// UpdateQuantity replaces the quantity of an existing item, clamped to
// [1, MaxQuantity].
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

// RemoveItem drops an item from the cart.
type RemoveItem struct {
	ProductID string
}

// Clear empties the cart.
type Clear struct{}

func (AddItem) command()        {}
func (UpdateQuantity) command() {}
func (RemoveItem) command()     {}
func (Clear) command()          {}

// Effect is a side effect the caller of Apply must run before committing the
// next state.
type Effect interface {
	effect()
}

// Persist asks for the full item list to be written to durable storage.
type Persist struct {
	Items []LineItem
}

func (Persist) effect() {}

// Apply is the pure cart transition: it returns the state after cmd and the
// effects required to make it durable. s is never modified.
//
// Commands referencing an unknown product are no-ops, but still persist.
func Apply(s State, cmd Command) (State, []Effect) {
	items := slices.Clone(s.Items)

	switch c := cmd.(type) {
	case AddItem:
		qty := addQuantity(c)
		if idx := s.Find(c.Item.ID); idx >= 0 {
			items[idx].Quantity = clampQuantity(clampQuantity(items[idx].Quantity) + qty)
		} else {
			item := c.Item
			item.Quantity = qty
			items = append(items, item)
		}
	case UpdateQuantity:
		if idx := s.Find(c.ProductID); idx >= 0 {
			items[idx].Quantity = clampQuantity(c.Quantity)
		}
	case RemoveItem:
		items = slices.DeleteFunc(items, func(i LineItem) bool {
			return i.ID == c.ProductID
		})
	case Clear:
		items = []LineItem{}
	}

	next := NewState(items)
	return next, []Effect{Persist{Items: slices.Clone(next.Items)}}
}

func addQuantity(c AddItem) int {
	switch {
	case c.Quantity > 0:
		return clampQuantity(c.Quantity)
	case c.Item.Quantity > 0:
		return clampQuantity(c.Item.Quantity)
	default:
		return 1
	}
}
