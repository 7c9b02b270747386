// Package catalog models the sellable inventory: products, their variants,
// and the priced lines checkout resolves SKUs against.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no product matches the lookup.
var ErrNotFound = errors.New("product not found")

// InsufficientStockError indicates a variant cannot cover the requested
// quantity. The message is safe to show the shopper.
type InsufficientStockError struct {
	SKU      string
	Quantity int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s (requested %d)", e.SKU, e.Quantity)
}

// Product is a sellable item with one or more purchasable variants.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Variants    []Variant       `json:"variants"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Variant is a purchasable size/color combination identified by SKU. Stock
// is tracked per variant, not per product.
type Variant struct {
	SKU       string          `json:"sku"`
	ProductID string          `json:"productId"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// PricedLine is the catalog's answer to "what does this SKU cost right now":
// the authoritative price and display fields an order line snapshots.
type PricedLine struct {
	SKU         string
	ProductID   string
	ProductName string
	Price       decimal.Decimal
	Image       string
	Stock       int
}

// Repository provides catalog reads.
type Repository interface {
	List(ctx context.Context) ([]Product, error)

	// GetBySlug returns the product for the slug, or ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*Product, error)

	// FindLines resolves variant SKUs to priced lines in one batch. SKUs with
	// no matching variant are simply absent from the result map.
	FindLines(ctx context.Context, skus []string) (map[string]PricedLine, error)
}
