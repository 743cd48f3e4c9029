package order

import (
	"context"
	"testing"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/kv"
)

func TestKVLog_AppendPrepends(t *testing.T) {
	ctx := context.Background()
	l := NewKVLog(kv.NewMemory(), "")

	require.NoError(t, l.Append(ctx, &Order{ID: "first", Status: StatusPending}))
	require.NoError(t, l.Append(ctx, &Order{ID: "second", Status: StatusShipped}))

	orders, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "second", orders[0].ID)
	assert.Equal(t, StatusShipped, orders[0].Status)
	assert.Equal(t, "first", orders[1].ID)
}

func TestKVLog_MalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, DefaultLogKey, []byte(`{"broken":`)))
	l := NewKVLog(mem, "")

	orders, err := l.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	require.NoError(t, l.Append(ctx, &Order{ID: "fresh"}))
	orders, err = l.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "fresh", orders[0].ID)
}

func TestKVLog_UnparsableDateIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, DefaultLogKey, []byte(`[
		{"id": "o-1", "orderDate": "yesterday", "status": "Pending"},
		{"id": "o-2", "orderDate": "2024-06-10T06:13:20Z"}
	]`)))

	orders, err := NewKVLog(mem, "").List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, orders[0].OrderDate.IsZero())
	assert.False(t, orders[1].OrderDate.IsZero())

	entries := logs.FilterMessage("Unparsable order date, kept as zero time").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "o-1", fields["order_id"])
	assert.Equal(t, "yesterday", fields["order_date"])
	assert.Equal(t, DefaultLogKey, fields["key"])
}

func TestUnmarshalOrders_LegacyShape(t *testing.T) {
	raw := `[
		{
			"id": 1718000000000,
			"userId": 3,
			"username": "guest",
			"orderDate": "2024-06-10T06:13:20.000Z",
			"address": "Hanoi",
			"phone": "0900",
			"email": "a@x.com",
			"fullname": "Hai",
			"note": "",
			"status": "Shipped",
			"total": 30,
			"items": [{"id": 1, "title": "Phone", "price": 10, "quantity": 3, "description": "x"}]
		},
		null,
		{"id": "abc", "userId": null, "status": "Lost", "items": null}
	]`

	orders, err := UnmarshalOrders([]byte(raw))
	require.NoError(t, err)
	require.Len(t, orders, 2)

	o := orders[0]
	assert.Equal(t, "1718000000000", o.ID)
	assert.Equal(t, int64(3), o.UserID)
	assert.Equal(t, "Hai", o.Buyer.FullName)
	assert.Equal(t, "a@x.com", o.Buyer.Email)
	assert.Equal(t, StatusShipped, o.Status)
	assert.Equal(t, 2024, o.OrderDate.Year())
	assert.True(t, d("30").Equal(o.Total))
	require.Len(t, o.Items, 1)
	assert.Equal(t, 3, o.Items[0].Quantity)

	assert.Equal(t, "abc", orders[1].ID)
	assert.Zero(t, orders[1].UserID)
	assert.Equal(t, StatusPending, orders[1].Status)
	assert.Empty(t, orders[1].Items)
}

func TestMarshalOrders_RoundTrip(t *testing.T) {
	in := []Order{{
		ID:        "0190a8f2-0000-7000-8000-000000000001",
		UserID:    9,
		Username:  "ada",
		Buyer:     validBuyer(),
		OrderDate: fixedNow,
		Status:    StatusProcessing,
		Total:     d("12.34"),
		Items:     []cart.LineItem{{ID: "5", Title: "Pen", Price: d("6.17"), Quantity: 2}},
	}}

	out, err := UnmarshalOrders(MarshalOrders(in))
	require.NoError(t, err)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, in[0].ID, got.ID)
	assert.Equal(t, in[0].UserID, got.UserID)
	assert.Equal(t, in[0].Username, got.Username)
	assert.Equal(t, in[0].Buyer, got.Buyer)
	assert.True(t, in[0].OrderDate.Equal(got.OrderDate))
	assert.Equal(t, in[0].Status, got.Status)
	assert.True(t, in[0].Total.Equal(got.Total))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
}
