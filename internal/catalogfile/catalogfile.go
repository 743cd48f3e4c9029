// Package catalogfile reads catalog snapshots from JSON files, optionally
// gzip-compressed.
package catalogfile

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Catalog is the decoded content of a catalog file.
type Catalog struct {
	Categories []product.Category
	Products   []product.Product
}

type fileJSON struct {
	Categories []categoryJSON `json:"categories"`
	Products   []productJSON  `json:"products"`
}

type categoryJSON struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type productJSON struct {
	ID          flexID          `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Thumbnail   string          `json:"thumbnail"`
	CategoryID  flexID          `json:"categoryId"`
	Quantity    int             `json:"quantity"`
}

// flexID accepts both string and numeric identifiers.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "id")
	}
	*id = flexID(n.String())
	return nil
}

// Load reads the catalog file at path. Files ending in ".gz" are
// decompressed.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	c, err := Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return c, nil
}

// Decode reads a catalog document from r. Products without an id are
// skipped.
func Decode(r io.Reader) (*Catalog, error) {
	var doc fileJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "parse catalog JSON")
	}

	c := &Catalog{
		Categories: make([]product.Category, 0, len(doc.Categories)),
		Products:   make([]product.Product, 0, len(doc.Products)),
	}
	for _, cat := range doc.Categories {
		if cat.ID == "" {
			continue
		}
		c.Categories = append(c.Categories, product.Category{ID: string(cat.ID), Name: cat.Name})
	}
	for _, p := range doc.Products {
		if p.ID == "" {
			continue
		}
		c.Products = append(c.Products, product.Product{
			ID:          string(p.ID),
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			Thumbnail:   p.Thumbnail,
			CategoryID:  string(p.CategoryID),
			Quantity:    max(p.Quantity, 0),
		})
	}
	return c, nil
}

// Static loads path into an in-memory catalog.
func Static(path string) (*product.StaticCatalog, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	return product.NewStaticCatalog(c.Categories, c.Products), nil
}
