package order

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/cart"
)

// ErrEmptyCart is returned by PlaceOrder when the cart has no items.
var ErrEmptyCart = errors.New("cart is empty")

// Cart is the part of cart.Store used by checkout.
type Cart interface {
	Checkout(ctx context.Context, place func(ctx context.Context, snapshot cart.State) error) (cart.State, error)
}

// Checkout places an order from the current cart and clears the cart once
// the order is durably recorded.
type Checkout struct {
	cart      Cart
	submitter *Submitter
}

// NewCheckout creates a Checkout.
func NewCheckout(c Cart, submitter *Submitter) *Checkout {
	return &Checkout{cart: c, submitter: submitter}
}

// PlaceOrder submits the cart contents and clears the cart as one unit: cart
// mutations and concurrent checkouts wait until it is done, so a cart yields
// at most one order.
//
// If clearing fails after the order was recorded, both the order and the
// error are returned: the order exists and must not be submitted twice.
func (c *Checkout) PlaceOrder(ctx context.Context, req SubmitRequest) (*Order, error) {
	var placed *Order
	_, err := c.cart.Checkout(ctx, func(ctx context.Context, snapshot cart.State) error {
		if len(snapshot.Items) == 0 {
			return ErrEmptyCart
		}
		o, err := c.submitter.Submit(ctx, req, snapshot)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		if placed != nil {
			return placed, errors.Wrap(err, "clear cart")
		}
		return nil, err
	}
	return placed, nil
}
