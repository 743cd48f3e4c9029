// Package account reads the signed-in buyer profile written by the profile
// and settings screens.
package account

import (
	"github.com/xenking/kart-storefront/internal/domain/order"
)

// Profile is the stored buyer profile. A zero ID means the id is unknown.
type Profile struct {
	ID       int64
	Username string
	FullName string
	Email    string
	Phone    string
	Address  string
}

// Account converts the profile into checkout defaults.
func (p Profile) Account() *order.Account {
	return &order.Account{
		UserID:   p.ID,
		Username: p.Username,
		Defaults: order.Buyer{
			FullName: p.FullName,
			Email:    p.Email,
			Phone:    p.Phone,
			Address:  p.Address,
		},
	}
}

// Identity returns the identity used to look up the profile's orders.
func (p Profile) Identity() order.Identity {
	return order.Identity{
		UserID:   p.ID,
		Username: p.Username,
		Email:    p.Email,
	}
}
