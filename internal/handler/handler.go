// Package handler exposes the cart, checkout and catalog operations as a
// local JSON API for the storefront UI.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/kart-storefront/internal/domain/account"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Profiles loads the signed-in buyer profile.
type Profiles interface {
	Load(ctx context.Context) (account.Profile, bool, error)
}

// Handler decodes UI requests and delegates to the domain services.
type Handler struct {
	cart     *cart.Store
	checkout *order.Checkout
	orders   *order.Submitter
	catalog  product.Catalog
	profiles Profiles
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cartStore *cart.Store,
	checkout *order.Checkout,
	orders *order.Submitter,
	catalog product.Catalog,
	profiles Profiles,
) *Handler {
	return &Handler{
		cart:     cartStore,
		checkout: checkout,
		orders:   orders,
		catalog:  catalog,
		profiles: profiles,
	}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)
	mux.HandleFunc("POST /api/cart/items", h.AddCartItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.RemoveCartItem)

	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/orders", h.ListOrders)

	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
}
