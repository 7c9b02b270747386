package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhakawear/storefront-api/internal/domain/catalog"
	"github.com/dhakawear/storefront-api/internal/domain/coupon"
	"github.com/dhakawear/storefront-api/internal/domain/order"
	"github.com/dhakawear/storefront-api/internal/domain/user"
	"github.com/dhakawear/storefront-api/internal/payment"
)

// --- Fakes ---

type fakeUserRepo struct {
	byEmail map[string]*user.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	if f.byEmail == nil {
		f.byEmail = make(map[string]*user.User)
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrNotFound
}

type fakeCatalog struct {
	lines map[string]catalog.PricedLine
}

func (f *fakeCatalog) List(_ context.Context) ([]catalog.Product, error) { return nil, nil }
func (f *fakeCatalog) GetBySlug(_ context.Context, _ string) (*catalog.Product, error) {
	return nil, catalog.ErrNotFound
}
func (f *fakeCatalog) FindLines(_ context.Context, skus []string) (map[string]catalog.PricedLine, error) {
	out := make(map[string]catalog.PricedLine)
	for _, sku := range skus {
		if pl, ok := f.lines[sku]; ok {
			out[sku] = pl
		}
	}
	return out, nil
}

type fakeValidator struct{}

func (fakeValidator) Validate(_ context.Context, _ string, _ decimal.Decimal) (*coupon.Discount, error) {
	return nil, coupon.ErrNotFound
}

type fakeOrderRepo struct {
	created []*order.Order
}

func (f *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	f.created = append(f.created, o)
	return nil
}
func (f *fakeOrderRepo) Get(_ context.Context, _ string) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (f *fakeOrderRepo) ListByUser(_ context.Context, _ string) ([]order.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) List(_ context.Context, _ order.ListParams) ([]order.Order, int, error) {
	return nil, 0, nil
}
func (f *fakeOrderRepo) SetPaid(_ context.Context, _ string, _ time.Time) (bool, error) {
	return false, nil
}
func (f *fakeOrderRepo) SetDelivered(_ context.Context, _ string, _ time.Time) (bool, error) {
	return false, nil
}
func (f *fakeOrderRepo) Cancel(_ context.Context, _ string) (bool, error) { return false, nil }

type fakeIssuer struct{ calls int }

func (f *fakeIssuer) Issue(u *user.User) (string, error) {
	f.calls++
	return "token-for-" + u.ID, nil
}

// --- Helpers ---

func newTestCheckout() (*Service, *fakeUserRepo, *fakeOrderRepo, *fakeIssuer) {
	userRepo := &fakeUserRepo{}
	orderRepo := &fakeOrderRepo{}
	issuer := &fakeIssuer{}
	cat := &fakeCatalog{lines: map[string]catalog.PricedLine{
		"TS-M-BLK": {
			SKU:         "TS-M-BLK",
			ProductID:   "p1",
			ProductName: "Black Tee",
			Price:       decimal.RequireFromString("450.00"),
			Stock:       10,
		},
	}}

	users := user.NewService(userRepo)
	orders := order.NewService(cat, fakeValidator{}, orderRepo, payment.StubGateway{}, order.DefaultRateTable(), "bdt")
	return NewService(users, orders, issuer), userRepo, orderRepo, issuer
}

func validRequest() Request {
	return Request{
		Cart: []CartItem{{VariantSKU: "TS-M-BLK", Quantity: 2}},
		ShippingAddress: order.ShippingAddress{
			FullName: "Rahim Uddin",
			Phone:    "01711111111",
			Street:   "12 Green Road",
			City:     "Dhaka",
		},
		PaymentMethod: order.PaymentCOD,
	}
}

// --- Tests ---

func TestSubmit_EmptyCart(t *testing.T) {
	svc, _, orderRepo, _ := newTestCheckout()

	req := validRequest()
	req.Cart = nil
	_, err := svc.Submit(context.Background(), req)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, orderRepo.created)
}

func TestSubmit_AuthenticatedCaller(t *testing.T) {
	svc, _, orderRepo, issuer := newTestCheckout()

	req := validRequest()
	req.CallerID = "existing-user"
	conf, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, conf.Token)
	assert.Zero(t, issuer.calls)
	require.Len(t, orderRepo.created, 1)
	assert.Equal(t, "existing-user", orderRepo.created[0].UserID)
}

func TestSubmit_AnonymousRegistersInline(t *testing.T) {
	svc, userRepo, orderRepo, issuer := newTestCheckout()

	req := validRequest()
	req.Contact = Contact{Name: "Rahim", Email: "rahim@example.com", Password: "sup3rsecret"}
	conf, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	// An account was created and its token travels with the confirmation.
	u, ok := userRepo.byEmail["rahim@example.com"]
	require.True(t, ok)
	assert.Equal(t, user.RoleCustomer, u.Role)
	assert.Equal(t, "token-for-"+u.ID, conf.Token)
	assert.Equal(t, 1, issuer.calls)
	require.Len(t, orderRepo.created, 1)
	assert.Equal(t, u.ID, orderRepo.created[0].UserID)
}

func TestSubmit_DuplicateEmailAbortsBeforeOrder(t *testing.T) {
	svc, userRepo, orderRepo, _ := newTestCheckout()
	userRepo.byEmail = map[string]*user.User{
		"rahim@example.com": {ID: "u1", Email: "rahim@example.com"},
	}

	req := validRequest()
	req.Contact = Contact{Name: "Rahim", Email: "rahim@example.com", Password: "sup3rsecret"}
	_, err := svc.Submit(context.Background(), req)

	require.ErrorIs(t, err, user.ErrEmailTaken)
	assert.Empty(t, orderRepo.created)
}

func TestSubmit_WeakPasswordAbortsBeforeOrder(t *testing.T) {
	svc, _, orderRepo, _ := newTestCheckout()

	req := validRequest()
	req.Contact = Contact{Name: "Rahim", Email: "rahim@example.com", Password: "short"}
	_, err := svc.Submit(context.Background(), req)

	require.ErrorIs(t, err, user.ErrWeakPassword)
	assert.Empty(t, orderRepo.created)
}

func TestSubmit_CardReturnsClientSecret(t *testing.T) {
	svc, _, _, _ := newTestCheckout()

	req := validRequest()
	req.CallerID = "u1"
	req.PaymentMethod = order.PaymentCard
	conf, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, conf.ClientSecret)
	assert.NotEmpty(t, conf.Order.PaymentIntentID)
	assert.Equal(t, order.StatusPending, conf.Order.Status)
	assert.False(t, conf.Order.IsPaid)
}
