package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/kv"
)

// DefaultKey is the key the cart item list is persisted under.
const DefaultKey = "cartItems"

// Store owns the canonical cart. Every operation is a complete
// read-modify-persist unit executed under a single mutex, so concurrent
// callers never lose an update.
type Store struct {
	kv  kv.Store
	key string

	mu       sync.Mutex
	state    State
	restored bool
}

// NewStore returns a Store persisting under key. The cart is restored lazily
// on first use, or explicitly via Restore.
func NewStore(store kv.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		kv:    store,
		key:   key,
		state: NewState(nil),
	}
}

// Restore loads the persisted cart. Absent or malformed data yields an empty
// cart. Once the cart has been established, Restore does nothing and returns
// the current state, so stale storage never overwrites newer mutations.
func (s *Store) Restore(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.restoreLocked(ctx); err != nil {
		return State{}, err
	}
	return s.state.Clone(), nil
}

func (s *Store) restoreLocked(ctx context.Context) error {
	if s.restored {
		return nil
	}

	data, ok, err := kv.Read(ctx, s.kv, s.key)
	if err != nil {
		return errors.Wrap(err, "restore cart")
	}

	var items []LineItem
	if ok {
		items, err = UnmarshalItems(data)
		if err != nil {
			zctx.From(ctx).Warn("Discarding malformed persisted cart",
				zap.String("key", s.key),
				zap.Error(err),
			)
			items = nil
		}
	}

	s.state = NewState(items)
	s.restored = true
	return nil
}

// AddItem merges item into the cart. When qty is not positive, item.Quantity
// is used, then 1. A qty above MaxQuantity is rejected with *QuantityError.
func (s *Store) AddItem(ctx context.Context, item LineItem, qty int) (State, error) {
	if qty > MaxQuantity {
		return State{}, &QuantityError{Quantity: qty}
	}
	return s.dispatch(ctx, AddItem{Item: item, Quantity: qty})
}

// UpdateQuantity sets the quantity of productID, clamped to at least 1.
// Unknown products are ignored. A quantity above MaxQuantity is rejected
// with *QuantityError.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (State, error) {
	if quantity > MaxQuantity {
		return State{}, &QuantityError{Quantity: quantity}
	}
	return s.dispatch(ctx, UpdateQuantity{ProductID: productID, Quantity: quantity})
}

// RemoveItem drops productID from the cart. Unknown products are ignored.
func (s *Store) RemoveItem(ctx context.Context, productID string) (State, error) {
	return s.dispatch(ctx, RemoveItem{ProductID: productID})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) (State, error) {
	return s.dispatch(ctx, Clear{})
}

// Snapshot returns a deep copy of the current cart.
func (s *Store) Snapshot(ctx context.Context) (State, error) {
	return s.Restore(ctx)
}

// TotalPrice returns the current cart total. It is derived on demand.
func (s *Store) TotalPrice(ctx context.Context) (decimal.Decimal, error) {
	st, err := s.Restore(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return st.TotalPrice(), nil
}

// Checkout hands a snapshot of the cart to place and clears the cart once
// place succeeded. The cart lock is held throughout, so mutations and other
// checkouts issued meanwhile wait and then observe the emptied cart.
//
// When place fails the cart is left untouched and its error is returned
// as is.
func (s *Store) Checkout(ctx context.Context, place func(ctx context.Context, snapshot State) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.restoreLocked(ctx); err != nil {
		return State{}, err
	}
	if err := place(ctx, s.state.Clone()); err != nil {
		return s.state.Clone(), err
	}
	return s.applyLocked(ctx, Clear{})
}

// dispatch applies cmd and runs its effects. The new state is committed only
// after every effect succeeded; on failure the previous state is kept.
func (s *Store) dispatch(ctx context.Context, cmd Command) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.restoreLocked(ctx); err != nil {
		return State{}, err
	}
	return s.applyLocked(ctx, cmd)
}

func (s *Store) applyLocked(ctx context.Context, cmd Command) (State, error) {
	next, effects := Apply(s.state, cmd)
	for _, eff := range effects {
		if err := s.run(ctx, eff); err != nil {
			return s.state.Clone(), err
		}
	}

	s.state = next
	return next.Clone(), nil
}

func (s *Store) run(ctx context.Context, eff Effect) error {
	switch e := eff.(type) {
	case Persist:
		return kv.Write(ctx, s.kv, s.key, MarshalItems(e.Items))
	default:
		return errors.Errorf("unknown effect %T", eff)
	}
}
