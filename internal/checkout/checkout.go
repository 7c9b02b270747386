// Package checkout coordinates the storefront checkout flow: cart guard,
// identity resolution, order submission, and payment completion. It is the
// only layer that translates lower-level failures into the shape the
// storefront shows the shopper; the domain packages below it never swallow
// errors.
package checkout

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/dhakawear/storefront-api/internal/domain/order"
	"github.com/dhakawear/storefront-api/internal/domain/user"
)

// ErrEmptyCart is the UX short-circuit for submitting an empty cart: the
// storefront redirects back to the cart instead of showing an error page.
var ErrEmptyCart = errors.New("cart is empty")

// CartItem is one line of the client cart snapshot, keyed by variant SKU.
// The price the client saw is not part of the snapshot: checkout re-prices
// every line from the catalog.
type CartItem struct {
	VariantSKU string
	Quantity   int
}

// Contact identifies the shopper for inline registration when the request
// carries no session.
type Contact struct {
	Name     string
	Email    string
	Password string
}

// Request is a complete checkout submission.
type Request struct {
	// CallerID is the authenticated user, or empty for anonymous checkout.
	CallerID        string
	Cart            []CartItem
	Contact         Contact
	ShippingAddress order.ShippingAddress
	PaymentMethod   order.PaymentMethod
	CouponCode      string
	BkashNumber     string
	BkashTxnID      string
}

// Confirmation is the terminal state of a successful checkout. Token is set
// only when an account was registered inline; ClientSecret only for card
// payments, which the client confirms against the processor. For cod and
// bkash the order is submitted immediately and the cart can be cleared.
type Confirmation struct {
	Order        *order.Order
	Token        string
	ClientSecret string
}

// TokenIssuer signs an access token for a freshly registered account.
type TokenIssuer interface {
	Issue(u *user.User) (string, error)
}

// Service orchestrates checkout submissions.
type Service struct {
	users  *user.Service
	orders *order.Service
	tokens TokenIssuer
}

// NewService creates a checkout Service.
func NewService(users *user.Service, orders *order.Service, tokens TokenIssuer) *Service {
	return &Service{users: users, orders: orders, tokens: tokens}
}

// Submit runs the checkout state machine end to end.
//
// An anonymous caller is registered inline from the contact info and the
// resulting session token is returned with the confirmation; a registration
// failure (duplicate email, weak password) aborts checkout verbatim with no
// order created. Pricing, coupon re-validation, and stock reservation all
// happen inside order creation. A card order that is created but never
// confirmed stays PENDING and unpaid: the shopper retries payment without
// re-submitting the cart.
func (s *Service) Submit(ctx context.Context, req Request) (*Confirmation, error) {
	if len(req.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	callerID := req.CallerID
	token := ""
	if callerID == "" {
		u, err := s.users.Register(ctx, req.Contact.Name, req.Contact.Email, req.Contact.Password)
		if err != nil {
			return nil, err
		}
		token, err = s.tokens.Issue(u)
		if err != nil {
			return nil, errors.Wrap(err, "issue token")
		}
		callerID = u.ID
	}

	lines := make([]order.LineInput, len(req.Cart))
	for i, item := range req.Cart {
		lines[i] = order.LineInput{VariantSKU: item.VariantSKU, Quantity: item.Quantity}
	}

	created, err := s.orders.Create(ctx, order.CreateRequest{
		UserID:          callerID,
		Items:           lines,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
		BkashNumber:     req.BkashNumber,
		BkashTxnID:      req.BkashTxnID,
	})
	if err != nil {
		return nil, err
	}

	return &Confirmation{
		Order:        created.Order,
		Token:        token,
		ClientSecret: created.ClientSecret,
	}, nil
}
