package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalItems_Normalizes(t *testing.T) {
	raw := `[
		{"id": 1, "title": "Phone", "price": 10, "thumbnail": "1.jpg", "quantity": 2, "description": "ignored"},
		null,
		{"title": "no id"},
		{"id": "2", "title": "Case", "price": "4.99", "quantity": "3"},
		{"id": 3, "title": "Cable", "price": 1.5},
		{"id": 4, "title": "Zero", "price": 2, "quantity": 0},
		{"id": 1, "title": "Phone", "price": 10, "quantity": 1}
	]`

	items, err := UnmarshalItems([]byte(raw))
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "Phone", items[0].Title)
	assert.Equal(t, "1.jpg", items[0].Thumbnail)
	assert.Equal(t, 3, items[0].Quantity, "duplicate ids are merged")
	assert.True(t, d("10").Equal(items[0].Price))

	assert.Equal(t, "2", items[1].ID)
	assert.True(t, d("4.99").Equal(items[1].Price))
	assert.Equal(t, 3, items[1].Quantity)

	assert.Equal(t, "3", items[2].ID)
	assert.Equal(t, 1, items[2].Quantity, "missing quantity defaults to 1")

	assert.Equal(t, 1, items[3].Quantity, "zero quantity is floored to 1")
}

func TestUnmarshalItems_BoundsQuantity(t *testing.T) {
	raw := `[
		{"id": 1, "price": 1, "quantity": 9223372036854775807},
		{"id": 1, "price": 1, "quantity": 5},
		{"id": 2, "price": 1, "quantity": 1e30},
		{"id": 3, "price": 1, "quantity": -1e30},
		{"id": 4, "price": 1, "quantity": -9223372036854775807}
	]`

	items, err := UnmarshalItems([]byte(raw))
	require.NoError(t, err)
	require.Len(t, items, 4)

	for _, item := range items[:2] {
		assert.Equal(t, MaxQuantity, item.Quantity, "item %s", item.ID)
	}
	for _, item := range items[2:] {
		assert.Equal(t, 1, item.Quantity, "item %s", item.ID)
	}
	assert.Equal(t, 2*MaxQuantity+2, TotalQuantity(items))
}

func TestUnmarshalItems_Malformed(t *testing.T) {
	for _, raw := range []string{
		``,
		`{"id": 1}`,
		`"cart"`,
		`[{"id": 1, "price": }]`,
		`[{"id": 1`,
	} {
		_, err := UnmarshalItems([]byte(raw))
		assert.Error(t, err, "input %q", raw)
	}
}

func TestUnmarshalItems_Empty(t *testing.T) {
	items, err := UnmarshalItems([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestMarshalItems_RoundTrip(t *testing.T) {
	in := []LineItem{
		{ID: "1", Title: `Quote "x"`, Price: d("19.99"), Thumbnail: "a.jpg", Quantity: 2},
		{ID: "sku-7", Title: "Plain", Price: d("0"), Quantity: 1},
	}

	out, err := UnmarshalItems(MarshalItems(in))
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].Title, out[i].Title)
		assert.Equal(t, in[i].Quantity, out[i].Quantity)
		assert.True(t, in[i].Price.Equal(out[i].Price))
	}

	assert.Equal(t, "[]", string(MarshalItems(nil)))
}
