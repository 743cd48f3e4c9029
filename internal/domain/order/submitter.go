package order

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
)

const instrumentationName = "github.com/xenking/kart-storefront/internal/domain/order"

// DefaultRemoteTimeout bounds a single remote submission attempt.
const DefaultRemoteTimeout = 10 * time.Second

// ErrClosed is returned by Submit once Close was called.
var ErrClosed = errors.New("submitter closed")

// SubmitRequest holds buyer input for a checkout.
type SubmitRequest struct {
	Buyer Buyer
	// StatusCode is mapped with StatusFromCode.
	StatusCode int
	// Account, when set, fills empty buyer fields and tags the order.
	Account *Account
}

// SubmitterConfig holds non-dependency configuration for the Submitter.
type SubmitterConfig struct {
	// RemoteTimeout bounds each remote attempt. Zero means DefaultRemoteTimeout.
	RemoteTimeout time.Duration
	// Now overrides the clock stamping OrderDate.
	Now func() time.Time

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Submitter turns cart snapshots into orders. Orders are durably appended to
// the local log before a detached, best-effort remote submission; remote
// failures are logged and counted but never reported to the caller.
type Submitter struct {
	orders  Log
	remote  Remote
	timeout time.Duration
	now     func() time.Time

	tracer         trace.Tracer
	placed         metric.Int64Counter
	remoteFailures metric.Int64Counter

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewSubmitter creates a Submitter. remote may be nil to disable remote
// submission.
func NewSubmitter(orders Log, remote Remote, cfg SubmitterConfig) (*Submitter, error) {
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = DefaultRemoteTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}

	meter := cfg.MeterProvider.Meter(instrumentationName)
	placed, err := meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders durably recorded in the local order log"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create placed counter")
	}
	remoteFailures, err := meter.Int64Counter("storefront.orders.remote_failures",
		metric.WithDescription("Remote order submissions that failed or timed out"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create remote failures counter")
	}

	return &Submitter{
		orders:         orders,
		remote:         remote,
		timeout:        cfg.RemoteTimeout,
		now:            cfg.Now,
		tracer:         cfg.TracerProvider.Tracer(instrumentationName),
		placed:         placed,
		remoteFailures: remoteFailures,
	}, nil
}

// Submit validates the buyer, builds an Order from snapshot, appends it to
// the order log and kicks off remote submission in the background.
//
// A *ValidationError means nothing was written. A *kv.PersistenceError means
// the order could not be recorded. Remote outcomes never affect the result.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest, snapshot cart.State) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Submit")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if s.isClosed() {
		return nil, ErrClosed
	}

	buyer := normalizeBuyer(req.Buyer, req.Account)
	if err := validateBuyer(buyer); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "generate order id")
	}

	// Items are copied so later cart mutations cannot reach the order.
	items := slices.Clone(snapshot.Items)
	if items == nil {
		items = []cart.LineItem{}
	}

	o := &Order{
		ID:        id.String(),
		Username:  "guest",
		Buyer:     buyer,
		OrderDate: s.now().UTC(),
		Status:    StatusFromCode(req.StatusCode),
		Total:     cart.TotalPrice(items),
		Items:     items,
	}
	if a := req.Account; a != nil {
		o.UserID = a.UserID
		if a.Username != "" {
			o.Username = a.Username
		}
	}
	span.SetAttributes(
		attribute.String("order.id", o.ID),
		attribute.Int("order.items", len(o.Items)),
	)

	if err := s.orders.Append(ctx, o); err != nil {
		return nil, errors.Wrap(err, "append order")
	}
	s.placed.Add(ctx, 1)

	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("total", o.Total.String()),
		zap.Int("items", len(o.Items)),
	)

	s.submitRemote(ctx, o.Clone())
	return o, nil
}

// submitRemote runs the remote submission detached from ctx cancellation and
// bounded by the configured timeout. Its result is only logged.
func (s *Submitter) submitRemote(ctx context.Context, o *Order) {
	if s.remote == nil {
		return
	}

	lg := zctx.From(ctx).With(zap.String("order_id", o.ID))
	ctx = context.WithoutCancel(ctx)

	// Add must not race with Close waiting on inflight.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		lg.Warn("Submitter closed, remote submission skipped, order kept locally")
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if err := s.remote.SubmitOrder(ctx, o); err != nil {
			s.remoteFailures.Add(ctx, 1)
			lg.Warn("Remote order submission failed, order kept locally", zap.Error(err))
			return
		}
		lg.Debug("Remote order submission succeeded")
	}()
}

// Wait blocks until all in-flight remote submissions finished. It must not
// be called concurrently with Submit; use Close for shutdown.
func (s *Submitter) Wait() {
	s.inflight.Wait()
}

// Close stops accepting submissions and waits for the in-flight remote
// submissions to finish. Submit returns ErrClosed afterwards.
func (s *Submitter) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()
}

func (s *Submitter) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ListOrdersFor returns the logged orders matching id, newest first. A zero
// identity matches nothing.
func (s *Submitter) ListOrdersFor(ctx context.Context, id Identity) ([]Order, error) {
	if id.IsZero() {
		return []Order{}, nil
	}

	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	matched := make([]Order, 0, len(all))
	for _, o := range all {
		if id.Matches(o) {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

// normalizeBuyer trims input and fills empty fields from the account.
func normalizeBuyer(b Buyer, a *Account) Buyer {
	b = Buyer{
		FullName: strings.TrimSpace(b.FullName),
		Email:    strings.TrimSpace(b.Email),
		Phone:    strings.TrimSpace(b.Phone),
		Address:  strings.TrimSpace(b.Address),
		Note:     strings.TrimSpace(b.Note),
	}
	if a == nil {
		return b
	}
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = strings.TrimSpace(fallback)
		}
	}
	fill(&b.FullName, a.Defaults.FullName)
	fill(&b.Email, a.Defaults.Email)
	fill(&b.Phone, a.Defaults.Phone)
	fill(&b.Address, a.Defaults.Address)
	return b
}

func validateBuyer(b Buyer) error {
	var missing []string
	if b.FullName == "" {
		missing = append(missing, "fullName")
	}
	if b.Email == "" {
		missing = append(missing, "email")
	}
	if b.Address == "" {
		missing = append(missing, "address")
	}
	if b.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
