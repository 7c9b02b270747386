package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dhakawear/storefront-api/internal/domain/catalog"
)

const (
	listProductsSQL = `SELECT id, name, slug, description, price, category, images, created_at
		FROM products ORDER BY created_at DESC`

	getProductBySlugSQL = `SELECT id, name, slug, description, price, category, images, created_at
		FROM products WHERE slug = $1`

	listVariantsSQL = `SELECT sku, product_id, size, color, price, stock
		FROM product_variants WHERE product_id = ANY($1)`

	findLinesSQL = `SELECT v.sku, v.product_id, p.name, v.price,
			COALESCE(p.images->>0, ''), v.stock
		FROM product_variants v JOIN products p ON p.id = v.product_id
		WHERE v.sku = ANY($1)`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns all products with their variants, newest first.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetBySlug returns a single product with its variants.
// Returns catalog.ErrNotFound on a miss.
func (r *CatalogRepository) GetBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductBySlugSQL, slug)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", slug, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", slug, err)
	}

	products := []catalog.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// FindLines resolves variant SKUs to priced order lines in one batch query.
func (r *CatalogRepository) FindLines(ctx context.Context, skus []string) (map[string]catalog.PricedLine, error) {
	rows, err := r.pool.Query(ctx, findLinesSQL, skus)
	if err != nil {
		return nil, fmt.Errorf("resolving variants: %w", err)
	}

	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.PricedLine, error) {
		var pl catalog.PricedLine
		err := row.Scan(&pl.SKU, &pl.ProductID, &pl.ProductName, &pl.Price, &pl.Image, &pl.Stock)
		return pl, err
	})
	if err != nil {
		return nil, fmt.Errorf("resolving variants: %w", err)
	}

	out := make(map[string]catalog.PricedLine, len(lines))
	for _, pl := range lines {
		out[pl.SKU] = pl
	}
	return out, nil
}

func (r *CatalogRepository) attachVariants(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	byID := make(map[string]*catalog.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		byID[products[i].ID] = &products[i]
	}

	rows, err := r.pool.Query(ctx, listVariantsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing variants: %w", err)
	}
	variants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Variant, error) {
		var v catalog.Variant
		err := row.Scan(&v.SKU, &v.ProductID, &v.Size, &v.Color, &v.Price, &v.Stock)
		return v, err
	})
	if err != nil {
		return fmt.Errorf("listing variants: %w", err)
	}

	for _, v := range variants {
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p      catalog.Product
		price  decimal.Decimal
		images []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &price, &p.Category, &images, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	p.Price = price
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return p, fmt.Errorf("decoding product images: %w", err)
	}
	return p, nil
}
