package kv

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, []byte) error   { return f.err }

func TestMemory_GetMissing(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", in))
	in[0] = 'x'

	out, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[1] = 'y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestWithPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	s := WithPrefix(m, "session-1")

	require.NoError(t, s.Set(ctx, "cartItems", []byte("[]")))

	v, err := m.Get(ctx, "session-1:cartItems")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(v))

	assert.Same(t, m, WithPrefix(m, ""))
}

func TestRead(t *testing.T) {
	ctx := context.Background()

	v, ok, err := Read(ctx, NewMemory(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)

	_, _, err = Read(ctx, failingStore{err: errors.New("conn reset")}, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn reset")
}

func TestWrite_WrapsPersistenceError(t *testing.T) {
	cause := errors.New("disk full")
	err := Write(context.Background(), failingStore{err: cause}, "orders", []byte("[]"))

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "orders", pErr.Key)
	assert.ErrorIs(t, err, cause)
}
