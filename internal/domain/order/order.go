package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status enumerates the order lifecycle states.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusPaid       Status = "PAID"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusReturned   Status = "RETURNED"
)

// PaymentMethod enumerates the accepted payment methods.
type PaymentMethod string

const (
	// PaymentCOD is cash on delivery: funds are collected when the order arrives.
	PaymentCOD PaymentMethod = "cod"
	// PaymentBkash is a mobile-wallet transfer reconciled manually by an admin
	// from the sender number and transaction ID supplied at checkout.
	PaymentBkash PaymentMethod = "bkash"
	// PaymentCard is confirmed through an external card processor.
	PaymentCard PaymentMethod = "card"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentBkash, PaymentCard:
		return true
	}
	return false
}

var (
	// ErrEmptyOrder is returned when an order is submitted with no items.
	ErrEmptyOrder = errors.New("no order items")
	// ErrNotFound is returned when no order matches the ID.
	ErrNotFound = errors.New("order not found")
	// ErrForbidden is returned when the caller is neither the owner nor an admin.
	ErrForbidden = errors.New("not authorized to view this order")
	// ErrNotCancellable is returned when cancelling a delivered or already
	// cancelled order.
	ErrNotCancellable = errors.New("order cannot be cancelled")
)

// UnknownVariantError indicates an order line referenced a variant SKU that
// does not exist in the catalog.
type UnknownVariantError struct {
	SKU string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown variant %s", e.SKU)
}

// InvalidQuantityError indicates an order line with a non-positive quantity.
type InvalidQuantityError struct {
	SKU string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for variant %s", e.SKU)
}

// Item is an immutable line-item snapshot captured at order creation.
// Name, price and image are copied from the catalog at that moment and never
// re-derived afterwards.
type Item struct {
	ProductID  string          `json:"productId"`
	VariantSKU string          `json:"variantSku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Image      string          `json:"image,omitempty"`
}

// ShippingAddress is the delivery destination captured with the order.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	AltPhone string `json:"altPhone,omitempty"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	Zip      string `json:"zip,omitempty"`
	Country  string `json:"country,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Order is the persisted aggregate. Money reconciles by construction:
// TotalAmount = ItemsPrice + ShippingPrice + TaxPrice - DiscountAmount,
// computed once at creation and never recomputed. IsPaid and IsDelivered are
// monotonic; no exposed operation resets them.
type Order struct {
	ID              string
	UserID          string
	Items           []Item
	ItemsPrice      decimal.Decimal
	ShippingPrice   decimal.Decimal
	TaxPrice        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	PaymentMethod   PaymentMethod
	Status          Status
	ShippingAddress ShippingAddress
	PaymentIntentID string
	BkashNumber     string
	BkashTxnID      string
	CouponCode      string
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	CreatedAt       time.Time
}

// ListParams controls the admin order listing. Keyword matches the shipping
// name, shipping phone, status, or a case-insensitive substring of the order
// ID. Page is 1-based.
type ListParams struct {
	Keyword  string
	Page     int
	PageSize int
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order and decrements variant stock for every line
	// in a single transaction. A line whose variant lacks sufficient stock
	// fails the whole transaction with *catalog.InsufficientStockError.
	Create(ctx context.Context, o *Order) error

	Get(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context, p ListParams) (orders []Order, total int, err error)

	// SetPaid marks the order paid if it is not already. Reports whether the
	// row changed; false with a nil error means the order was already paid.
	SetPaid(ctx context.Context, id string, paidAt time.Time) (bool, error)

	// SetDelivered marks the order delivered if it is not already.
	SetDelivered(ctx context.Context, id string, deliveredAt time.Time) (bool, error)

	// Cancel sets status CANCELLED and restores variant stock for every line
	// in a single transaction. Reports whether the row changed.
	Cancel(ctx context.Context, id string) (bool, error)
}
