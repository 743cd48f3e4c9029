package product

import (
	"context"
	"slices"
)

var _ Catalog = (*StaticCatalog)(nil)

// StaticCatalog serves a fixed in-memory catalog.
type StaticCatalog struct {
	categories []Category
	products   map[string]Product
}

// NewStaticCatalog builds a catalog from categories and products. Later
// products replace earlier ones with the same id.
func NewStaticCatalog(categories []Category, products []Product) *StaticCatalog {
	c := &StaticCatalog{
		categories: slices.Clone(categories),
		products:   make(map[string]Product, len(products)),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *StaticCatalog) ListCategories(context.Context) ([]Category, error) {
	out := slices.Clone(c.categories)
	if out == nil {
		out = []Category{}
	}
	return out, nil
}

func (c *StaticCatalog) GetProduct(_ context.Context, id string) (*Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
