package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// MarshalItems encodes items as a JSON array.
func MarshalItems(items []LineItem) []byte {
	var e jx.Encoder
	WriteItems(&e, items)
	return e.Bytes()
}

// UnmarshalItems decodes a persisted item list. Records are normalized on the
// way in: null entries and entries without an id are dropped, quantities
// below 1 become 1 and duplicate ids are merged into the first occurrence.
func UnmarshalItems(data []byte) ([]LineItem, error) {
	items, err := ReadItems(jx.DecodeBytes(data))
	if err != nil {
		return nil, err
	}
	return items, nil
}

// WriteItems writes items as a JSON array to e.
func WriteItems(e *jx.Encoder, items []LineItem) {
	e.ArrStart()
	for _, i := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(i.ID)
		e.FieldStart("title")
		e.Str(i.Title)
		e.FieldStart("price")
		e.Raw([]byte(i.Price.String()))
		e.FieldStart("thumbnail")
		e.Str(i.Thumbnail)
		e.FieldStart("quantity")
		e.Int(i.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
}

// ReadItems reads a JSON array of line items from d.
func ReadItems(d *jx.Decoder) ([]LineItem, error) {
	if d.Next() != jx.Array {
		return nil, errors.Errorf("expected array, got %s", d.Next())
	}

	var items []LineItem
	index := make(map[string]int)
	if err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return d.Skip()
		}
		item, err := readItem(d)
		if err != nil {
			return err
		}
		if item.ID == "" {
			return nil
		}
		if idx, ok := index[item.ID]; ok {
			items[idx].Quantity = clampQuantity(items[idx].Quantity + item.Quantity)
			return nil
		}
		index[item.ID] = len(items)
		items = append(items, item)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode items")
	}

	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

func readItem(d *jx.Decoder) (LineItem, error) {
	var item LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			item.ID, err = ReadID(d)
		case "title":
			item.Title, err = ReadString(d)
		case "price":
			item.Price, err = ReadDecimal(d)
		case "thumbnail":
			item.Thumbnail, err = ReadString(d)
		case "quantity":
			var q decimal.Decimal
			q, err = ReadDecimal(d)
			item.Quantity = decodeQuantity(q)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return LineItem{}, err
	}
	item.Quantity = clampQuantity(item.Quantity)
	return item, nil
}

// decodeQuantity bounds q before the integer conversion, which would
// otherwise wrap for out-of-range values.
func decodeQuantity(q decimal.Decimal) int {
	switch {
	case q.GreaterThan(decimal.NewFromInt(MaxQuantity)):
		return MaxQuantity
	case q.LessThan(decimal.NewFromInt(1)):
		return 1
	default:
		return int(q.IntPart())
	}
}

// ReadID reads an identifier that may be stored as a JSON string or number.
// Null yields an empty id.
func ReadID(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return "", d.Skip()
	}
}

// ReadString reads a string, treating null and non-string values as empty.
func ReadString(d *jx.Decoder) (string, error) {
	if d.Next() != jx.String {
		return "", d.Skip()
	}
	return d.Str()
}

// ReadDecimal reads a number that may be stored as a JSON number or a numeric
// string. Null and unparsable strings yield zero.
func ReadDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = n.String()
	default:
		return decimal.Zero, d.Skip()
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, nil
	}
	return v, nil
}
