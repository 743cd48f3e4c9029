package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

const (
	listCategoriesSQL = `SELECT id, name FROM categories ORDER BY id`
	getProductSQL     = `SELECT id, title, price, description, thumbnail, COALESCE(category_id, ''), quantity
	FROM products WHERE id = $1`
	upsertCategorySQL = `INSERT INTO categories (id, name) VALUES ($1, $2)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`
	upsertProductSQL = `INSERT INTO products (id, title, price, description, thumbnail, category_id, quantity)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		price = EXCLUDED.price,
		description = EXCLUDED.description,
		thumbnail = EXCLUDED.thumbnail,
		category_id = EXCLUDED.category_id,
		quantity = EXCLUDED.quantity`
)

var _ product.Catalog = (*Catalog)(nil)

// Catalog implements product.Catalog backed by PostgreSQL.
type Catalog struct {
	pool *pgxpool.Pool
}

// NewCatalog returns a Catalog that uses the given pool.
func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// ListCategories returns all categories ordered by id.
func (c *Catalog) ListCategories(ctx context.Context) ([]product.Category, error) {
	rows, err := c.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Category, error) {
		var cat product.Category
		err := row.Scan(&cat.ID, &cat.Name)
		return cat, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan categories")
	}
	if categories == nil {
		categories = []product.Category{}
	}
	return categories, nil
}

// GetProduct returns a single product by its identifier, or
// product.ErrNotFound.
func (c *Catalog) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := c.pool.QueryRow(ctx, getProductSQL, id).Scan(
		&p.ID, &p.Title, &p.Price, &p.Description, &p.Thumbnail, &p.CategoryID, &p.Quantity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	return &p, nil
}

// UpsertCategory inserts or updates a category.
func (c *Catalog) UpsertCategory(ctx context.Context, cat product.Category) error {
	if _, err := c.pool.Exec(ctx, upsertCategorySQL, cat.ID, cat.Name); err != nil {
		return errors.Wrapf(err, "upsert category %q", cat.ID)
	}
	return nil
}

// UpsertProduct inserts or updates a product. Its category must exist.
func (c *Catalog) UpsertProduct(ctx context.Context, p product.Product) error {
	if _, err := c.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Title, p.Price, p.Description, p.Thumbnail, p.CategoryID, p.Quantity,
	); err != nil {
		return errors.Wrapf(err, "upsert product %q", p.ID)
	}
	return nil
}
