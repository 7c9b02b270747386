//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestHealthEndpoints(t *testing.T) {
	for _, path := range []string{"/livez", "/readyz"} {
		resp := doGet(t, path, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
		body := decodeJSON[healthResponse](t, resp)
		if body.Status != "ok" {
			t.Fatalf("%s: status %q, checks %v", path, body.Status, body.Checks)
		}
	}
}

func TestValidateCoupon(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/v1/coupons/validate", "", map[string]any{
		"code":   "WELCOME10",
		"amount": 1000,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("validate: status %d", resp.StatusCode)
	}
	body := decodeJSON[validateResponse](t, resp)
	if body.Code != "WELCOME10" || body.DiscountAmount <= 0 {
		t.Fatalf("unexpected validation result: %+v", body)
	}

	resp = doJSON(t, http.MethodPost, "/api/v1/coupons/validate", "", map[string]any{
		"code":   "NOSUCHCODE",
		"amount": 1000,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown code: status %d", resp.StatusCode)
	}
	if reason := decodeJSON[errorResponse](t, resp).Reason; reason != "coupon_not_found" {
		t.Fatalf("unknown code reason %q", reason)
	}
}

func TestCheckoutLifecycle(t *testing.T) {
	sku := firstVariantSKU(t)
	email := fmt.Sprintf("shopper-%d@example.com", time.Now().UnixNano())

	// Anonymous checkout registers inline and returns a session token.
	resp := doJSON(t, http.MethodPost, "/api/v1/checkout", "", map[string]any{
		"items": []map[string]any{{"variantSku": sku, "quantity": 1}},
		"contact": map[string]any{
			"name":     "Integration Shopper",
			"email":    email,
			"password": "sup3rsecret",
		},
		"paymentMethod": "cod",
		"shippingAddress": map[string]any{
			"fullName": "Integration Shopper",
			"phone":    "01700000000",
			"street":   "1 Test Lane",
			"city":     "Dhaka",
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: status %d", resp.StatusCode)
	}
	conf := decodeJSON[checkoutResponse](t, resp)
	if conf.Token == "" {
		t.Fatal("expected inline registration token")
	}
	if conf.Order.Status != "PENDING" || conf.Order.ShippingPrice != 70 {
		t.Fatalf("unexpected order: %+v", conf.Order)
	}
	if conf.Order.TotalAmount != conf.Order.ItemsPrice+conf.Order.ShippingPrice-conf.Order.DiscountAmount {
		t.Fatalf("total does not reconcile: %+v", conf.Order)
	}

	// The shopper sees the order; it appears in their history.
	resp = doGet(t, "/api/v1/orders/"+conf.Order.ID, conf.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get own order: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// A second account cannot see it.
	other := doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Other",
		"email":    fmt.Sprintf("other-%d@example.com", time.Now().UnixNano()),
		"password": "sup3rsecret",
	})
	otherToken := decodeJSON[sessionResponse](t, other).Token
	resp = doGet(t, "/api/v1/orders/"+conf.Order.ID, otherToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger access: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Admin transitions: pay, then deliver, then cancel conflicts.
	admin := adminToken(t)

	paid := decodeJSON[orderResponse](t, doJSON(t, http.MethodPut,
		"/api/v1/orders/"+conf.Order.ID+"/pay", admin, nil))
	if !paid.IsPaid || paid.Status != "PAID" {
		t.Fatalf("after pay: %+v", paid)
	}

	delivered := decodeJSON[orderResponse](t, doJSON(t, http.MethodPut,
		"/api/v1/orders/"+conf.Order.ID+"/deliver", admin, nil))
	if !delivered.IsDelivered || delivered.Status != "DELIVERED" {
		t.Fatalf("after deliver: %+v", delivered)
	}

	resp = doJSON(t, http.MethodPut, "/api/v1/orders/"+conf.Order.ID+"/cancel", admin, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("cancel delivered order: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Admin keyword search finds the order by shipping name.
	list := decodeJSON[orderListResponse](t, doGet(t,
		"/api/v1/orders?keyword=Integration+Shopper", admin))
	if len(list.Orders) == 0 {
		t.Fatal("keyword search returned no orders")
	}
}

func TestAdminGateOnCustomer(t *testing.T) {
	email := fmt.Sprintf("customer-%d@example.com", time.Now().UnixNano())
	resp := doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Plain Customer",
		"email":    email,
		"password": "sup3rsecret",
	})
	token := decodeJSON[sessionResponse](t, resp).Token

	for _, path := range []string{"/api/v1/orders", "/api/v1/coupons"} {
		resp := doGet(t, path, token)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s as customer: status %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}
