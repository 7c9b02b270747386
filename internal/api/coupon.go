package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dhakawear/storefront-api/internal/domain/coupon"
)

type validateCouponRequest struct {
	Code   string          `json:"code" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type validateCouponResponse struct {
	Code           string          `json:"code"`
	Type           string          `json:"type"`
	Value          decimal.Decimal `json:"value"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// ValidateCoupon checks a code against a cart subtotal and returns the
// discount it would grant. Purely advisory: order creation re-validates.
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	d, err := h.couponsV.Validate(c.Request.Context(), req.Code, req.Amount)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, validateCouponResponse{
		Code:           d.Coupon.Code,
		Type:           string(d.Coupon.Type),
		Value:          d.Coupon.Value,
		DiscountAmount: d.Amount,
	})
}

type couponRequest struct {
	Code       string          `json:"code"`
	Type       string          `json:"type" binding:"required"`
	Value      decimal.Decimal `json:"value" binding:"required"`
	MinAmount  decimal.Decimal `json:"minAmount"`
	ExpiryDate time.Time       `json:"expiryDate" binding:"required"`
	IsActive   *bool           `json:"isActive"`
}

type couponResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	MinAmount  decimal.Decimal `json:"minAmount"`
	ExpiryDate time.Time       `json:"expiryDate"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func toCouponResponse(cp *coupon.Coupon) couponResponse {
	return couponResponse{
		ID:         cp.ID,
		Code:       cp.Code,
		Type:       string(cp.Type),
		Value:      cp.Value,
		MinAmount:  cp.MinAmount,
		ExpiryDate: cp.ExpiryDate,
		IsActive:   cp.IsActive,
		CreatedAt:  cp.CreatedAt,
	}
}

func (r couponRequest) toDomain(id string) *coupon.Coupon {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &coupon.Coupon{
		ID:         id,
		Code:       r.Code,
		Type:       coupon.Type(r.Type),
		Value:      r.Value,
		MinAmount:  r.MinAmount,
		ExpiryDate: r.ExpiryDate,
		IsActive:   active,
	}
}

// ListCoupons returns all coupons for the admin console.
func (h *Handler) ListCoupons(c *gin.Context) {
	all, err := h.coupons.List(c.Request.Context())
	if err != nil {
		h.domainError(c, err)
		return
	}
	out := make([]couponResponse, len(all))
	for i := range all {
		out[i] = toCouponResponse(&all[i])
	}
	c.JSON(http.StatusOK, gin.H{"coupons": out})
}

// GetCoupon returns a single coupon by ID.
func (h *Handler) GetCoupon(c *gin.Context) {
	cp, err := h.coupons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCouponResponse(cp))
}

// CreateCoupon creates a new coupon.
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cp, err := h.coupons.Create(c.Request.Context(), req.toDomain(""))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCouponResponse(cp))
}

// UpdateCoupon rewrites a coupon's mutable fields. The code cannot change.
func (h *Handler) UpdateCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cp, err := h.coupons.Update(c.Request.Context(), req.toDomain(c.Param("id")))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCouponResponse(cp))
}

// DeleteCoupon removes a coupon by ID.
func (h *Handler) DeleteCoupon(c *gin.Context) {
	if err := h.coupons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.domainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
