package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Category groups catalog products.
type Category struct {
	ID   string
	Name string
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Title       string
	Price       decimal.Decimal
	Description string
	Thumbnail   string
	CategoryID  string
	// Quantity is the default amount added to the cart when the caller does
	// not pass one. Zero means 1.
	Quantity int
}

// LineItem converts p into a cart line item carrying its default quantity.
func (p Product) LineItem() cart.LineItem {
	return cart.LineItem{
		ID:        p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Thumbnail: p.Thumbnail,
		Quantity:  p.Quantity,
	}
}

// Catalog is the read-only catalog query interface.
type Catalog interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
}
