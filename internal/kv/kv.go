// Package kv defines the durable key-value store the storefront persists its
// cart, order log and account profile into.
package kv

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Store.Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Store is a durable key-value store. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// PersistenceError indicates a failed durable write. It is always fatal to
// the operation that attempted the write.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %q: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Write calls s.Set and wraps a failure into a *PersistenceError.
func Write(ctx context.Context, s Store, key string, value []byte) error {
	if err := s.Set(ctx, key, value); err != nil {
		return &PersistenceError{Key: key, Err: err}
	}
	return nil
}

// Read calls s.Get and reports absent keys as (nil, false, nil).
func Read(ctx context.Context, s Store, key string) ([]byte, bool, error) {
	v, err := s.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, errors.Wrapf(err, "read %q", key)
	}
	return v, true, nil
}

type prefixed struct {
	next   Store
	prefix string
}

// WithPrefix scopes every key of s under prefix followed by a colon. An empty
// prefix returns s unchanged.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixed{next: s, prefix: prefix + ":"}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.next.Set(ctx, p.prefix+key, value)
}
