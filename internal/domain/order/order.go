package order

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
)

// Status is the fulfillment status recorded at order creation.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
)

// StatusFromCode maps the numeric status code submitted with a checkout.
// Unknown codes map to StatusPending.
func StatusFromCode(code int) Status {
	switch code {
	case 1:
		return StatusProcessing
	case 2:
		return StatusShipped
	default:
		return StatusPending
	}
}

// Code is the inverse of StatusFromCode.
func (s Status) Code() int {
	switch s {
	case StatusProcessing:
		return 1
	case StatusShipped:
		return 2
	default:
		return 0
	}
}

// Buyer holds shipping and contact details for an order.
type Buyer struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	Note     string
}

// Order is an immutable record created from a cart snapshot at checkout.
// Items and Total are copies taken at submission time.
type Order struct {
	ID        string
	UserID    int64
	Username  string
	Buyer     Buyer
	OrderDate time.Time
	Status    Status
	Total     decimal.Decimal
	Items     []cart.LineItem
}

// Clone returns a deep copy of o.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	return &c
}

// Identity selects orders belonging to a buyer. Zero fields are ignored.
type Identity struct {
	UserID   int64
	Username string
	Email    string
}

// IsZero reports whether no identity field is set.
func (id Identity) IsZero() bool {
	return id.UserID == 0 && id.Username == "" && id.Email == ""
}

// Matches reports whether o belongs to id: the user id, the username or the
// case-insensitive email match. Any one of them is enough.
func (id Identity) Matches(o Order) bool {
	switch {
	case id.UserID != 0 && o.UserID == id.UserID:
		return true
	case id.Username != "" && o.Username == id.Username:
		return true
	case id.Email != "" && o.Buyer.Email != "" && strings.EqualFold(o.Buyer.Email, id.Email):
		return true
	}
	return false
}

// Account is the signed-in buyer, used to default checkout fields and to tag
// orders for later lookup.
type Account struct {
	UserID   int64
	Username string
	Defaults Buyer
}

// Log is the durable, append-only order log.
type Log interface {
	Append(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
}

// Remote submits placed orders to the backend.
type Remote interface {
	SubmitOrder(ctx context.Context, o *Order) error
}
