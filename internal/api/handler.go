// Package api exposes the REST surface: gin handlers, bearer-token
// middleware, and the translation of domain errors into HTTP responses.
// This is the only layer that turns lower-level errors into user-facing
// messages; everything below returns them untranslated.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/dhakawear/storefront-api/internal/auth"
	"github.com/dhakawear/storefront-api/internal/checkout"
	"github.com/dhakawear/storefront-api/internal/domain/catalog"
	"github.com/dhakawear/storefront-api/internal/domain/coupon"
	"github.com/dhakawear/storefront-api/internal/domain/order"
	"github.com/dhakawear/storefront-api/internal/domain/user"
)

// Handler carries the services behind the REST surface.
type Handler struct {
	users    *user.Service
	tokens   *auth.Tokens
	catalog  catalog.Repository
	coupons  *coupon.Service
	couponsV coupon.Validator
	orders   *order.Service
	checkout *checkout.Service
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(
	users *user.Service,
	tokens *auth.Tokens,
	cat catalog.Repository,
	coupons *coupon.Service,
	couponValidator coupon.Validator,
	orders *order.Service,
	co *checkout.Service,
) *Handler {
	return &Handler{
		users:    users,
		tokens:   tokens,
		catalog:  cat,
		coupons:  coupons,
		couponsV: couponValidator,
		orders:   orders,
		checkout: co,
	}
}

// Routes registers all API routes under /api/v1 on the given engine.
func (h *Handler) Routes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)

		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:slug", h.GetProduct)

		v1.POST("/coupons/validate", h.ValidateCoupon)

		v1.POST("/checkout", h.OptionalAuth(), h.SubmitCheckout)

		authed := v1.Group("/", h.RequireAuth())
		{
			authed.POST("/orders", h.CreateOrder)
			authed.GET("/orders/myorders", h.GetMyOrders)
			authed.GET("/orders/:id", h.GetOrder)
		}

		admin := v1.Group("/", h.RequireAuth(), h.RequireAdmin())
		{
			admin.GET("/orders", h.ListOrders)
			admin.PUT("/orders/:id/pay", h.PayOrder)
			admin.PUT("/orders/:id/deliver", h.DeliverOrder)
			admin.PUT("/orders/:id/cancel", h.CancelOrder)

			admin.GET("/coupons", h.ListCoupons)
			admin.POST("/coupons", h.CreateCoupon)
			admin.GET("/coupons/:id", h.GetCoupon)
			admin.PUT("/coupons/:id", h.UpdateCoupon)
			admin.DELETE("/coupons/:id", h.DeleteCoupon)
		}
	}
}

// errorBody is the uniform error response: a machine-readable reason plus a
// human message.
type errorBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, reason string, err error) {
	c.AbortWithStatusJSON(status, errorBody{Reason: reason, Message: err.Error()})
}

// domainError maps a domain rejection to its HTTP shape. Unrecognized
// errors become an opaque 500; the cause is logged, not leaked.
func (h *Handler) domainError(c *gin.Context, err error) {
	var (
		belowMin    *coupon.BelowMinimumError
		badValue    *coupon.InvalidValueError
		unknownSKU  *order.UnknownVariantError
		badQuantity *order.InvalidQuantityError
		noStock     *catalog.InsufficientStockError
	)
	switch {
	case errors.Is(err, coupon.ErrNotFound):
		respondError(c, http.StatusNotFound, "coupon_not_found", err)
	case errors.Is(err, coupon.ErrExpired):
		respondError(c, http.StatusBadRequest, "coupon_expired", err)
	case errors.As(err, &belowMin):
		respondError(c, http.StatusBadRequest, "coupon_below_minimum", err)
	case errors.Is(err, coupon.ErrCodeTaken):
		respondError(c, http.StatusBadRequest, "coupon_code_taken", err)
	case errors.Is(err, coupon.ErrCodeImmutable):
		respondError(c, http.StatusConflict, "coupon_code_immutable", err)
	case errors.As(err, &badValue):
		respondError(c, http.StatusBadRequest, "coupon_invalid_value", err)

	case errors.Is(err, order.ErrEmptyOrder), errors.Is(err, checkout.ErrEmptyCart):
		respondError(c, http.StatusBadRequest, "empty_order", err)
	case errors.Is(err, order.ErrNotFound):
		respondError(c, http.StatusNotFound, "order_not_found", err)
	case errors.Is(err, order.ErrForbidden):
		respondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, order.ErrNotCancellable):
		respondError(c, http.StatusConflict, "order_not_cancellable", err)
	case errors.As(err, &unknownSKU), errors.As(err, &badQuantity):
		respondError(c, http.StatusUnprocessableEntity, "invalid_order_line", err)
	case errors.As(err, &noStock):
		respondError(c, http.StatusConflict, "insufficient_stock", err)

	case errors.Is(err, catalog.ErrNotFound):
		respondError(c, http.StatusNotFound, "product_not_found", err)

	case errors.Is(err, user.ErrEmailTaken):
		respondError(c, http.StatusBadRequest, "email_taken", err)
	case errors.Is(err, user.ErrWeakPassword):
		respondError(c, http.StatusBadRequest, "weak_password", err)
	case errors.Is(err, user.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", err)

	default:
		zctx.From(c.Request.Context()).Error("internal error", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{
			Reason:  "internal",
			Message: "internal server error",
		})
	}
}

func bindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "invalid_request", err)
}
