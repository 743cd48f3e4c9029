package order

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/kv"
)

// DefaultLogKey is the key the order log is persisted under.
const DefaultLogKey = "orders"

var _ Log = (*KVLog)(nil)

// KVLog keeps the whole order log as one JSON array under a single key,
// newest first. Appends are read-modify-write cycles serialized by a mutex.
type KVLog struct {
	store kv.Store
	key   string
	mu    sync.Mutex
}

// NewKVLog returns a KVLog persisting under key.
func NewKVLog(store kv.Store, key string) *KVLog {
	if key == "" {
		key = DefaultLogKey
	}
	return &KVLog{store: store, key: key}
}

// Append prepends o to the log.
func (l *KVLog) Append(ctx context.Context, o *Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.load(ctx)
	if err != nil {
		return err
	}

	orders := make([]Order, 0, len(existing)+1)
	orders = append(orders, *o.Clone())
	orders = append(orders, existing...)

	return kv.Write(ctx, l.store, l.key, MarshalOrders(orders))
}

// List returns every logged order, newest first.
func (l *KVLog) List(ctx context.Context) ([]Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.load(ctx)
}

func (l *KVLog) load(ctx context.Context) ([]Order, error) {
	data, ok, err := kv.Read(ctx, l.store, l.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Order{}, nil
	}

	orders, err := decodeOrders(data, zctx.From(ctx).With(zap.String("key", l.key)))
	if err != nil {
		zctx.From(ctx).Warn("Discarding malformed order log",
			zap.String("key", l.key),
			zap.Error(err),
		)
		return []Order{}, nil
	}
	return orders, nil
}

// MarshalOrders encodes orders as a JSON array.
func MarshalOrders(orders []Order) []byte {
	var e jx.Encoder
	e.ArrStart()
	for i := range orders {
		writeOrder(&e, &orders[i])
	}
	e.ArrEnd()
	return e.Bytes()
}

func writeOrder(e *jx.Encoder, o *Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("userId")
	if o.UserID != 0 {
		e.Int64(o.UserID)
	} else {
		e.Null()
	}
	e.FieldStart("username")
	e.Str(o.Username)
	e.FieldStart("orderDate")
	e.Str(o.OrderDate.Format(time.RFC3339Nano))
	e.FieldStart("fullname")
	e.Str(o.Buyer.FullName)
	e.FieldStart("email")
	e.Str(o.Buyer.Email)
	e.FieldStart("phone")
	e.Str(o.Buyer.Phone)
	e.FieldStart("address")
	e.Str(o.Buyer.Address)
	e.FieldStart("note")
	e.Str(o.Buyer.Note)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("total")
	e.Raw([]byte(o.Total.String()))
	e.FieldStart("items")
	cart.WriteItems(e, o.Items)
	e.ObjEnd()
}

// UnmarshalOrders decodes a persisted order log. Entries that are not objects
// are skipped; ids may be strings or numbers.
func UnmarshalOrders(data []byte) ([]Order, error) {
	return decodeOrders(data, zap.NewNop())
}

// decodeOrders is UnmarshalOrders reporting salvaged fields to lg.
func decodeOrders(data []byte, lg *zap.Logger) ([]Order, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, errors.Errorf("expected array, got %s", d.Next())
	}

	orders := []Order{}
	if err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return d.Skip()
		}
		o, err := readOrder(d, lg)
		if err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}

func readOrder(d *jx.Decoder, lg *zap.Logger) (Order, error) {
	o := Order{Items: []cart.LineItem{}}
	var badDate string
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			o.ID, err = cart.ReadID(d)
		case "userId":
			o.UserID, err = readInt64(d)
		case "username":
			o.Username, err = cart.ReadString(d)
		case "orderDate":
			var s string
			s, err = cart.ReadString(d)
			if err == nil && s != "" {
				t, perr := time.Parse(time.RFC3339Nano, s)
				if perr != nil {
					badDate = s
				}
				o.OrderDate = t
			}
		case "fullname":
			o.Buyer.FullName, err = cart.ReadString(d)
		case "email":
			o.Buyer.Email, err = cart.ReadString(d)
		case "phone":
			o.Buyer.Phone, err = cart.ReadString(d)
		case "address":
			o.Buyer.Address, err = cart.ReadString(d)
		case "note":
			o.Buyer.Note, err = cart.ReadString(d)
		case "status":
			var s string
			s, err = cart.ReadString(d)
			o.Status = parseStatus(s)
		case "total":
			o.Total, err = cart.ReadDecimal(d)
		case "items":
			if d.Next() != jx.Array {
				return d.Skip()
			}
			o.Items, err = cart.ReadItems(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err == nil && badDate != "" {
		lg.Warn("Unparsable order date, kept as zero time",
			zap.String("order_id", o.ID),
			zap.String("order_date", badDate),
		)
	}
	return o, err
}

func readInt64(d *jx.Decoder) (int64, error) {
	v, err := cart.ReadDecimal(d)
	if err != nil {
		return 0, err
	}
	return v.IntPart(), nil
}

func parseStatus(s string) Status {
	switch Status(s) {
	case StatusProcessing, StatusShipped:
		return Status(s)
	default:
		return StatusPending
	}
}
