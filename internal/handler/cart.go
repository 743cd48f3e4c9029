package handler

import (
	"net/http"

	"github.com/xenking/kart-storefront/internal/domain/cart"
)

type lineItemResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Thumbnail string  `json:"thumbnail"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type cartResponse struct {
	Items         []lineItemResponse `json:"items"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalPrice    float64            `json:"totalPrice"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func toLineItems(items []cart.LineItem) []lineItemResponse {
	out := make([]lineItemResponse, len(items))
	for i, item := range items {
		out[i] = lineItemResponse{
			ID:        item.ID,
			Title:     item.Title,
			Price:     item.Price.InexactFloat64(),
			Thumbnail: item.Thumbnail,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().InexactFloat64(),
		}
	}
	return out
}

func toCart(s cart.State) cartResponse {
	return cartResponse{
		Items:         toLineItems(s.Items),
		TotalQuantity: s.TotalQuantity,
		TotalPrice:    s.TotalPrice().InexactFloat64(),
	}
}

// GetCart returns the current cart with derived totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	st, err := h.cart.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(st))
}

// AddCartItem looks the product up in the catalog and merges it into the
// cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	st, err := h.cart.AddItem(r.Context(), p.LineItem(), req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(st))
}

// UpdateCartItem sets the quantity of a cart item.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, err := h.cart.UpdateQuantity(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(st))
}

// RemoveCartItem drops an item from the cart.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	st, err := h.cart.RemoveItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(st))
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	st, err := h.cart.Clear(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(st))
}
