package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/order"
)

type checkoutRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Note     string `json:"note"`
	Status   int    `json:"status"`
}

type orderResponse struct {
	ID        string             `json:"id"`
	UserID    int64              `json:"userId,omitempty"`
	Username  string             `json:"username"`
	FullName  string             `json:"fullName"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	Note      string             `json:"note"`
	OrderDate time.Time          `json:"orderDate"`
	Status    string             `json:"status"`
	Total     float64            `json:"total"`
	Items     []lineItemResponse `json:"items"`
}

func toOrder(o *order.Order) orderResponse {
	return orderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Username:  o.Username,
		FullName:  o.Buyer.FullName,
		Email:     o.Buyer.Email,
		Phone:     o.Buyer.Phone,
		Address:   o.Buyer.Address,
		Note:      o.Buyer.Note,
		OrderDate: o.OrderDate,
		Status:    string(o.Status),
		Total:     o.Total.InexactFloat64(),
		Items:     toLineItems(o.Items),
	}
}

// Checkout places an order from the current cart. Empty buyer fields are
// filled from the stored profile.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	submit := order.SubmitRequest{
		Buyer: order.Buyer{
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
			Address:  req.Address,
			Note:     req.Note,
		},
		StatusCode: req.Status,
	}
	profile, ok, err := h.profiles.Load(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if ok {
		submit.Account = profile.Account()
	}

	o, err := h.checkout.PlaceOrder(r.Context(), submit)
	if err != nil {
		if o == nil {
			writeDomainError(w, r, err)
			return
		}
		// The order is recorded; only clearing the cart failed.
		zctx.From(r.Context()).Error("Order placed but cart not cleared",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
	writeJSON(w, http.StatusCreated, toOrder(o))
}

// ListOrders returns the orders of the identity given in the query, or of
// the stored profile when the query names none.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := order.Identity{
		Username: q.Get("username"),
		Email:    q.Get("email"),
	}
	if raw := q.Get("userId"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "userId must be an integer")
			return
		}
		id.UserID = userID
	}

	if id.IsZero() {
		profile, ok, err := h.profiles.Load(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if ok {
			id = profile.Identity()
		}
	}

	orders, err := h.orders.ListOrdersFor(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrder(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}
