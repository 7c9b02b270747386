package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhakawear/storefront-api/internal/domain/catalog"
	"github.com/dhakawear/storefront-api/internal/domain/coupon"
	"github.com/dhakawear/storefront-api/internal/payment"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// LineInput is a requested order line. Only the SKU and quantity are taken
// from the client; price and display fields are resolved from the catalog.
type LineInput struct {
	VariantSKU string
	Quantity   int
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	UserID          string
	Items           []LineInput
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	CouponCode      string
	BkashNumber     string
	BkashTxnID      string
}

// Service implements the order aggregate lifecycle: snapshot creation with
// server-side pricing, admin state transitions, and scoped reads.
type Service struct {
	catalog  catalog.Repository
	coupons  coupon.Validator
	orders   Repository
	gateway  payment.Gateway
	rates    RateTable
	currency string
	now      func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(
	cat catalog.Repository,
	coupons coupon.Validator,
	orders Repository,
	gateway payment.Gateway,
	rates RateTable,
	currency string,
) *Service {
	return &Service{
		catalog:  cat,
		coupons:  coupons,
		orders:   orders,
		gateway:  gateway,
		rates:    rates,
		currency: currency,
		now:      time.Now,
	}
}

// Create builds an immutable line-item snapshot, computes totals, and
// persists the order in status PENDING.
//
// Every line is re-priced from the catalog by variant SKU; prices sent by
// the client are ignored. A coupon code, when present, is re-validated
// against the recomputed subtotal, so a stale or tampered client discount
// can never reach storage. Stock is decremented atomically per line inside
// the same transaction that writes the order.
//
// Card orders receive a payment intent before persisting; the client secret
// travels on the returned order's PaymentIntentID companion (see Created).
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Created, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !req.PaymentMethod.Valid() {
		return nil, errors.Errorf("unsupported payment method: %q", req.PaymentMethod)
	}

	skus := make([]string, len(req.Items))
	for i, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{SKU: line.VariantSKU}
		}
		skus[i] = line.VariantSKU
	}

	lines, err := s.catalog.FindLines(ctx, skus)
	if err != nil {
		return nil, errors.Wrap(err, "resolve variants")
	}

	items := make([]Item, len(req.Items))
	itemsPrice := decimal.Zero
	for i, line := range req.Items {
		pl, ok := lines[line.VariantSKU]
		if !ok {
			return nil, &UnknownVariantError{SKU: line.VariantSKU}
		}
		items[i] = Item{
			ProductID:  pl.ProductID,
			VariantSKU: pl.SKU,
			Name:       pl.ProductName,
			Price:      pl.Price,
			Quantity:   line.Quantity,
			Image:      pl.Image,
		}
		itemsPrice = itemsPrice.Add(pl.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	// Re-run the discount engine server-side. An invalid coupon fails the
	// order rather than silently dropping the discount.
	discountAmount := decimal.Zero
	couponCode := ""
	if req.CouponCode != "" {
		d, err := s.coupons.Validate(ctx, req.CouponCode, itemsPrice)
		if err != nil {
			return nil, err
		}
		discountAmount = d.Amount
		couponCode = d.Coupon.Code
	}

	shippingPrice := s.rates.Rate(req.ShippingAddress.City)
	taxPrice := decimal.Zero
	totalAmount := itemsPrice.Add(shippingPrice).Add(taxPrice).Sub(discountAmount)

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Items:           items,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shippingPrice,
		TaxPrice:        taxPrice,
		DiscountAmount:  discountAmount,
		TotalAmount:     totalAmount,
		PaymentMethod:   req.PaymentMethod,
		Status:          StatusPending,
		ShippingAddress: req.ShippingAddress,
		BkashNumber:     req.BkashNumber,
		BkashTxnID:      req.BkashTxnID,
		CouponCode:      couponCode,
		CreatedAt:       s.now(),
	}

	clientSecret := ""
	if req.PaymentMethod == PaymentCard {
		intent, err := s.gateway.CreateIntent(ctx, o.ID, o.TotalAmount, s.currency)
		if err != nil {
			return nil, errors.Wrap(err, "create payment intent")
		}
		o.PaymentIntentID = intent.ID
		clientSecret = intent.ClientSecret
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return &Created{Order: o, ClientSecret: clientSecret}, nil
}

// Created is the result of a successful order creation. ClientSecret is
// non-empty only for card orders and is never persisted.
type Created struct {
	Order        *Order
	ClientSecret string
}

// Get returns the order when the caller owns it or is an admin.
// Returns ErrNotFound on a miss and ErrForbidden otherwise.
func (s *Service) Get(ctx context.Context, id, callerID string, admin bool) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && o.UserID != callerID {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListMine returns the caller's orders, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns a page of all orders for the admin console, newest first,
// along with the total page count.
func (s *Service) ListAll(ctx context.Context, p ListParams) ([]Order, int, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}

	orders, total, err := s.orders.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	pages := (total + p.PageSize - 1) / p.PageSize
	if pages < 1 {
		pages = 1
	}
	return orders, pages, nil
}

// MarkPaid marks the order paid. Repeat calls are no-ops returning the
// current state: paidAt is written once and never advanced.
func (s *Service) MarkPaid(ctx context.Context, id string) (*Order, error) {
	if _, err := s.orders.SetPaid(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, id)
}

// MarkDelivered marks the order delivered and moves it to status DELIVERED.
// A COD order may be delivered before being marked paid: COD is paid on
// delivery. Repeat calls are no-ops; deliveredAt is never advanced.
func (s *Service) MarkDelivered(ctx context.Context, id string) (*Order, error) {
	if _, err := s.orders.SetDelivered(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, id)
}

// Cancel moves an undelivered order to CANCELLED and restores the stock its
// lines reserved. Delivered, returned, and already cancelled orders fail
// with ErrNotCancellable.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.IsDelivered || o.Status == StatusCancelled || o.Status == StatusReturned {
		return nil, ErrNotCancellable
	}
	changed, err := s.orders.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNotCancellable
	}
	return s.orders.Get(ctx, id)
}
