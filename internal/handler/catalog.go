package handler

import (
	"net/http"
)

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type productResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
	CategoryID  string  `json:"categoryId,omitempty"`
	Quantity    int     `json:"quantity"`
}

// ListCategories returns all catalog categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProduct returns a single catalog product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
		Thumbnail:   p.Thumbnail,
		CategoryID:  p.CategoryID,
		Quantity:    p.Quantity,
	})
}
