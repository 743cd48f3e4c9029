package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
)

func testOrder() *order.Order {
	return &order.Order{
		ID:       "0190a8f2-0000-7000-8000-000000000001",
		Username: "guest",
		Buyer: order.Buyer{
			FullName: "Ada", Email: "a@x.com", Phone: "555", Address: "London", Note: "ring twice",
		},
		OrderDate: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Status:    order.StatusShipped,
		Total:     decimal.RequireFromString("30"),
		Items:     []cart.LineItem{{ID: "1", Title: "Phone", Price: decimal.NewFromInt(10), Quantity: 3}},
	}
}

func TestEncodeOrder(t *testing.T) {
	fields := map[string]string{}
	d := jx.DecodeBytes(EncodeOrder(testOrder()))
	require.NoError(t, d.Obj(func(d *jx.Decoder, key string) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		fields[key] = raw.String()
		return nil
	}))

	assert.Equal(t, `"Ada"`, fields["fullname"])
	assert.Equal(t, `"555"`, fields["phone_number"])
	assert.Equal(t, `"ring twice"`, fields["note"])
	assert.Equal(t, `"2026-01-02T03:04:05Z"`, fields["order_date"])
	assert.Equal(t, `2`, fields["status"])
	assert.Equal(t, `30`, fields["total_money"])
	assert.Contains(t, fields["items"], `"quantity":3`)
}

func TestOrderClient_SubmitOrder(t *testing.T) {
	var (
		gotMethod, gotType string
		gotBody            []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewOrderClient(ClientConfig{URL: srv.URL})
	require.NoError(t, c.SubmitOrder(context.Background(), testOrder()))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, string(EncodeOrder(testOrder())), string(gotBody))
}

func TestOrderClient_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad order", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewOrderClient(ClientConfig{URL: srv.URL}).SubmitOrder(context.Background(), testOrder())

	var sErr *SubmitError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusBadRequest, sErr.StatusCode)
	assert.Equal(t, "bad order", sErr.Body)
}

func TestOrderClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewOrderClient(ClientConfig{URL: srv.URL}).SubmitOrder(ctx, testOrder())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOrderClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewOrderClient(ClientConfig{URL: url}).SubmitOrder(context.Background(), testOrder())
	require.Error(t, err)

	var sErr *SubmitError
	assert.False(t, errors.As(err, &sErr))
}
