package account

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/kv"
)

// DefaultKey is the key the profile is persisted under.
const DefaultKey = "user"

// Repository loads and stores the profile record.
type Repository struct {
	store kv.Store
	key   string
}

// NewRepository returns a Repository reading key from store.
func NewRepository(store kv.Store, key string) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{store: store, key: key}
}

// Load returns the stored profile. The boolean is false when no profile is
// stored or the stored record is unreadable.
func (r *Repository) Load(ctx context.Context) (Profile, bool, error) {
	data, ok, err := kv.Read(ctx, r.store, r.key)
	if err != nil {
		return Profile{}, false, err
	}
	if !ok {
		return Profile{}, false, nil
	}

	p, err := UnmarshalProfile(data)
	if err != nil {
		zctx.From(ctx).Warn("Ignoring malformed profile",
			zap.String("key", r.key),
			zap.Error(err),
		)
		return Profile{}, false, nil
	}
	return p, true, nil
}

// Save stores p.
func (r *Repository) Save(ctx context.Context, p Profile) error {
	return kv.Write(ctx, r.store, r.key, MarshalProfile(p))
}

// MarshalProfile encodes p in its canonical shape.
func MarshalProfile(p Profile) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("username")
	e.Str(p.Username)
	e.FieldStart("fullName")
	e.Str(p.FullName)
	e.FieldStart("email")
	e.Str(p.Email)
	e.FieldStart("phone")
	e.Str(p.Phone)
	e.FieldStart("address")
	e.Str(p.Address)
	e.ObjEnd()
	return e.Bytes()
}

// UnmarshalProfile decodes a stored profile. Older records use "name" and
// "phoneNumber"; the canonical "fullName" and "phone" win when both exist.
func UnmarshalProfile(data []byte) (Profile, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return Profile{}, errors.Errorf("expected object, got %s", d.Next())
	}

	var (
		p                 Profile
		name, phoneNumber string
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			var id string
			id, err = cart.ReadID(d)
			if err == nil {
				p.ID = parseID(id)
			}
		case "username":
			p.Username, err = cart.ReadString(d)
		case "fullName":
			p.FullName, err = cart.ReadString(d)
		case "name":
			name, err = cart.ReadString(d)
		case "email":
			p.Email, err = cart.ReadString(d)
		case "phone":
			p.Phone, err = cart.ReadString(d)
		case "phoneNumber":
			phoneNumber, err = cart.ReadString(d)
		case "address":
			p.Address, err = cart.ReadString(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	}); err != nil {
		return Profile{}, errors.Wrap(err, "decode profile")
	}

	if p.FullName == "" {
		p.FullName = name
	}
	if p.Phone == "" {
		p.Phone = phoneNumber
	}
	return p, nil
}

// parseID accepts integral ids only; anything else is treated as unknown.
func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
