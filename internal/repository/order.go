package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhakawear/storefront-api/internal/domain/catalog"
	"github.com/dhakawear/storefront-api/internal/domain/order"
)

const (
	orderColumns = `id, user_id, items, items_price, shipping_price, tax_price,
		discount_amount, total_amount, payment_method, status, shipping_address,
		payment_intent_id, bkash_number, bkash_txn_id, coupon_code,
		is_paid, paid_at, is_delivered, delivered_at, created_at`

	createOrderSQL = `INSERT INTO orders (id, user_id, items, items_price, shipping_price,
		tax_price, discount_amount, total_amount, payment_method, status, shipping_address,
		payment_intent_id, bkash_number, bkash_txn_id, coupon_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	decrementStockSQL = `UPDATE product_variants SET stock = stock - $2
		WHERE sku = $1 AND stock >= $2`

	restoreStockSQL = `UPDATE product_variants SET stock = stock + $2 WHERE sku = $1`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	searchOrdersWhere = ` WHERE shipping_address->>'fullName' ILIKE $1
		OR shipping_address->>'phone' ILIKE $1
		OR status ILIKE $1
		OR id::text ILIKE $1`

	setPaidSQL = `UPDATE orders SET is_paid = TRUE, paid_at = $2,
		status = CASE WHEN status = 'PENDING' THEN 'PAID' ELSE status END
		WHERE id = $1 AND is_paid = FALSE`

	setDeliveredSQL = `UPDATE orders SET is_delivered = TRUE, delivered_at = $2,
		status = 'DELIVERED'
		WHERE id = $1 AND is_delivered = FALSE`

	cancelOrderSQL = `UPDATE orders SET status = 'CANCELLED'
		WHERE id = $1 AND is_delivered = FALSE AND status NOT IN ('CANCELLED', 'RETURNED')
		RETURNING items`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and decrements variant stock for every line in
// one transaction, so a half-written order is never observable and two
// concurrent checkouts cannot oversell a variant. A conditional decrement
// that matches no row aborts with *catalog.InsufficientStockError.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, item := range o.Items {
			tag, err := tx.Exec(ctx, decrementStockSQL, item.VariantSKU, item.Quantity)
			if err != nil {
				return fmt.Errorf("decrementing stock for %q: %w", item.VariantSKU, err)
			}
			if tag.RowsAffected() == 0 {
				return &catalog.InsufficientStockError{SKU: item.VariantSKU, Quantity: item.Quantity}
			}
		}

		_, err := tx.Exec(ctx, createOrderSQL,
			o.ID, o.UserID, itemsJSON, o.ItemsPrice, o.ShippingPrice,
			o.TaxPrice, o.DiscountAmount, o.TotalAmount, string(o.PaymentMethod),
			string(o.Status), addressJSON,
			o.PaymentIntentID, o.BkashNumber, o.BkashTxnID, o.CouponCode,
		)
		if err != nil {
			return fmt.Errorf("creating order %q: %w", o.ID, err)
		}
		return nil
	})
}

// Get returns a single order. Returns order.ErrNotFound on a miss.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// List returns a page of all orders, newest first, with the total count.
// Keyword matches the shipping name, shipping phone, status, or an ID
// substring, all case-insensitively.
func (r *OrderRepository) List(ctx context.Context, p order.ListParams) ([]order.Order, int, error) {
	where := ""
	args := []any{}
	if p.Keyword != "" {
		where = searchOrdersWhere
		args = append(args, "%"+p.Keyword+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	listSQL := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, p.PageSize, (p.Page-1)*p.PageSize)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	return orders, total, nil
}

// SetPaid marks an order paid once. The WHERE clause keeps the operation
// idempotent under concurrent admin clicks: the second update matches no
// row, so paid_at is written exactly once.
func (r *OrderRepository) SetPaid(ctx context.Context, id string, paidAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, setPaidSQL, id, paidAt)
	if err != nil {
		return false, fmt.Errorf("marking order %q paid: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetDelivered marks an order delivered once, same idempotency shape as SetPaid.
func (r *OrderRepository) SetDelivered(ctx context.Context, id string, deliveredAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, setDeliveredSQL, id, deliveredAt)
	if err != nil {
		return false, fmt.Errorf("marking order %q delivered: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel moves an undelivered order to CANCELLED and restores the stock its
// lines reserved, in one transaction.
func (r *OrderRepository) Cancel(ctx context.Context, id string) (bool, error) {
	changed := false
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var itemsJSON []byte
		err := tx.QueryRow(ctx, cancelOrderSQL, id).Scan(&itemsJSON)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cancelling order %q: %w", id, err)
		}

		var items []order.Item
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			return fmt.Errorf("decoding order items: %w", err)
		}
		for _, item := range items {
			if _, err := tx.Exec(ctx, restoreStockSQL, item.VariantSKU, item.Quantity); err != nil {
				return fmt.Errorf("restoring stock for %q: %w", item.VariantSKU, err)
			}
		}
		changed = true
		return nil
	})
	return changed, err
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o             order.Order
		itemsJSON     []byte
		addressJSON   []byte
		paymentMethod string
		status        string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsJSON, &o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice,
		&o.DiscountAmount, &o.TotalAmount, &paymentMethod, &status, &addressJSON,
		&o.PaymentIntentID, &o.BkashNumber, &o.BkashTxnID, &o.CouponCode,
		&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.PaymentMethod = order.PaymentMethod(paymentMethod)
	o.Status = order.Status(status)
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("decoding order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("decoding shipping address: %w", err)
	}
	return o, nil
}
