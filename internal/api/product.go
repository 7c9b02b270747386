package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProducts returns the full catalog, newest first.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns a single product with its variants by slug.
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
