package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dhakawear/storefront-api/internal/checkout"
	"github.com/dhakawear/storefront-api/internal/domain/order"
)

type checkoutContactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type checkoutRequest struct {
	Items           []orderLineRequest     `json:"items" binding:"required"`
	Contact         checkoutContactRequest `json:"contact"`
	ShippingAddress order.ShippingAddress  `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	CouponCode      string                 `json:"couponCode"`
	BkashNumber     string                 `json:"bkashNumber"`
	BkashTxnID      string                 `json:"bkashTxnId"`
}

// SubmitCheckout runs the storefront checkout flow. An anonymous caller is
// registered inline from the contact block and receives a session token with
// the confirmation.
func (h *Handler) SubmitCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID := ""
	if claims, ok := claimsFrom(c); ok {
		callerID = claims.UserID
	}

	cart := make([]checkout.CartItem, len(req.Items))
	for i, item := range req.Items {
		cart[i] = checkout.CartItem{VariantSKU: item.VariantSKU, Quantity: item.Quantity}
	}

	conf, err := h.checkout.Submit(c.Request.Context(), checkout.Request{
		CallerID: callerID,
		Cart:     cart,
		Contact: checkout.Contact{
			Name:     req.Contact.Name,
			Email:    req.Contact.Email,
			Password: req.Contact.Password,
		},
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   order.PaymentMethod(req.PaymentMethod),
		CouponCode:      req.CouponCode,
		BkashNumber:     req.BkashNumber,
		BkashTxnID:      req.BkashTxnID,
	})
	if err != nil {
		h.domainError(c, err)
		return
	}

	resp := gin.H{"order": toOrderResponse(conf.Order)}
	if conf.Token != "" {
		resp["token"] = conf.Token
	}
	if conf.ClientSecret != "" {
		resp["clientSecret"] = conf.ClientSecret
	}
	c.JSON(http.StatusCreated, resp)
}
