package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dhakawear/storefront-api/internal/domain/order"
)

type orderLineRequest struct {
	VariantSKU string `json:"variantSku" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	Items           []orderLineRequest    `json:"items" binding:"required"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                `json:"paymentMethod" binding:"required"`
	CouponCode      string                `json:"couponCode"`
	BkashNumber     string                `json:"bkashNumber"`
	BkashTxnID      string                `json:"bkashTxnId"`
}

type orderResponse struct {
	ID              string                `json:"id"`
	UserID          string                `json:"userId"`
	Items           []order.Item          `json:"items"`
	ItemsPrice      decimal.Decimal       `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal       `json:"shippingPrice"`
	TaxPrice        decimal.Decimal       `json:"taxPrice"`
	DiscountAmount  decimal.Decimal       `json:"discountAmount"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
	PaymentMethod   string                `json:"paymentMethod"`
	Status          string                `json:"status"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentIntentID string                `json:"paymentIntentId,omitempty"`
	BkashNumber     string                `json:"bkashNumber,omitempty"`
	BkashTxnID      string                `json:"bkashTxnId,omitempty"`
	CouponCode      string                `json:"couponCode,omitempty"`
	IsPaid          bool                  `json:"isPaid"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	IsDelivered     bool                  `json:"isDelivered"`
	DeliveredAt     *time.Time            `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           o.Items,
		ItemsPrice:      o.ItemsPrice,
		ShippingPrice:   o.ShippingPrice,
		TaxPrice:        o.TaxPrice,
		DiscountAmount:  o.DiscountAmount,
		TotalAmount:     o.TotalAmount,
		PaymentMethod:   string(o.PaymentMethod),
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		PaymentIntentID: o.PaymentIntentID,
		BkashNumber:     o.BkashNumber,
		BkashTxnID:      o.BkashTxnID,
		CouponCode:      o.CouponCode,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
}

func toOrderResponses(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	return out
}

// CreateOrder places an order for the authenticated caller. Prices and
// discounts are recomputed server-side from the catalog and coupon store.
func (h *Handler) CreateOrder(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", order.ErrForbidden)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	lines := make([]order.LineInput, len(req.Items))
	for i, item := range req.Items {
		lines[i] = order.LineInput{VariantSKU: item.VariantSKU, Quantity: item.Quantity}
	}

	created, err := h.orders.Create(c.Request.Context(), order.CreateRequest{
		UserID:          claims.UserID,
		Items:           lines,
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

	resp := gin.H{"order": toOrderResponse(created.Order)}
	if created.ClientSecret != "" {
		resp["clientSecret"] = created.ClientSecret
	}
	c.JSON(http.StatusCreated, resp)
}

// GetOrder returns one order. Customers see only their own orders; admins
// see any.
func (h *Handler) GetOrder(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", order.ErrForbidden)
		return
	}

	o, err := h.orders.Get(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role.IsAdmin())
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

// GetMyOrders returns the caller's orders, newest first.
func (h *Handler) GetMyOrders(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", order.ErrForbidden)
		return
	}

	orders, err := h.orders.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders)})
}

// ListOrders returns a page of all orders for the admin console. Keyword
// matches the shipping name, phone, status, or an ID substring.
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	orders, pages, err := h.orders.ListAll(c.Request.Context(), order.ListParams{
		Keyword:  c.Query("keyword"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": toOrderResponses(orders),
		"page":   page,
		"pages":  pages,
	})
}

// PayOrder marks an order paid. Calling it again is a no-op that returns the
// current state.
func (h *Handler) PayOrder(c *gin.Context) {
	o, err := h.orders.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

// DeliverOrder marks an order delivered.
func (h *Handler) DeliverOrder(c *gin.Context) {
	o, err := h.orders.MarkDelivered(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

// CancelOrder cancels an undelivered order and restores its stock.
func (h *Handler) CancelOrder(c *gin.Context) {
	o, err := h.orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}
