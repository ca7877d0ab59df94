// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, catalog.NewResolver(db)),
	}
}

// GetCart handles GET /cart/:sessionId. Creates an empty cart on first
// access to an unknown session.
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.GetOrCreate(c.Param("sessionId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// AddItem handles POST /cart/:sessionId/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	view, err := h.cartService.AddItem(c.Param("sessionId"), req.VariantPriceID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// UpdateItem handles PUT /cart/:sessionId/items/:itemId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	view, err := h.cartService.SetItemQuantity(c.Param("sessionId"), itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RemoveItem handles DELETE /cart/:sessionId/items/:itemId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.cartService.RemoveItem(c.Param("sessionId"), itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearCart handles DELETE /cart/:sessionId
func (h *CartHandler) ClearCart(c *gin.Context) {
	view, err := h.cartService.Clear(c.Param("sessionId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListCarts handles GET /carts (admin)
func (h *CartHandler) ListCarts(c *gin.Context) {
	views, err := h.cartService.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperror.Validation("invalid_id", "invalid "+name)
	}
	return uint(id), nil
}
