// Package remote submits placed orders to the backend order API.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
)

// DefaultURL is the order endpoint of a locally running backend.
const DefaultURL = "http://localhost:8080/api/orders"

var _ order.Remote = (*OrderClient)(nil)

// SubmitError is returned when the backend answers with a non-2xx status.
type SubmitError struct {
	StatusCode int
	Body       string
}

func (e *SubmitError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("order submission rejected: status %d", e.StatusCode)
	}
	return fmt.Sprintf("order submission rejected: status %d: %s", e.StatusCode, e.Body)
}

// ClientConfig configures an OrderClient.
type ClientConfig struct {
	URL string
	// HTTPClient overrides the instrumented default client.
	HTTPClient *http.Client

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// OrderClient posts orders as JSON to the backend.
type OrderClient struct {
	url    string
	client *http.Client
}

// NewOrderClient creates an OrderClient. Deadlines come from the request
// context.
func NewOrderClient(cfg ClientConfig) *OrderClient {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	client := cfg.HTTPClient
	if client == nil {
		var opts []otelhttp.Option
		if cfg.TracerProvider != nil {
			opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
		}
		if cfg.MeterProvider != nil {
			opts = append(opts, otelhttp.WithMeterProvider(cfg.MeterProvider))
		}
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport, opts...)}
	}
	return &OrderClient{url: cfg.URL, client: client}
}

// SubmitOrder posts o. Transport errors, context expiry and non-2xx answers
// are failures.
func (c *OrderClient) SubmitOrder(ctx context.Context, o *order.Order) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(EncodeOrder(o)))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post order")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &SubmitError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// EncodeOrder renders the backend order payload.
func EncodeOrder(o *order.Order) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("fullname")
	e.Str(o.Buyer.FullName)
	e.FieldStart("email")
	e.Str(o.Buyer.Email)
	e.FieldStart("address")
	e.Str(o.Buyer.Address)
	e.FieldStart("phone_number")
	e.Str(o.Buyer.Phone)
	e.FieldStart("note")
	e.Str(o.Buyer.Note)
	e.FieldStart("order_date")
	e.Str(o.OrderDate.UTC().Format(time.RFC3339))
	e.FieldStart("status")
	e.Int(o.Status.Code())
	e.FieldStart("total_money")
	e.Raw([]byte(o.Total.String()))
	e.FieldStart("items")
	cart.WriteItems(&e, o.Items)
	e.ObjEnd()
	return e.Bytes()
}
