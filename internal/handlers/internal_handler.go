package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"royalfootwear/internal/services"
)

// InternalHandler serves service-to-service endpoints behind the internal API key.
type InternalHandler struct {
	cartService    services.CartServicer
	productService services.ProductServicer
}

// NewInternalHandler creates a new InternalHandler.
func NewInternalHandler(cartService services.CartServicer, productService services.ProductServicer) *InternalHandler {
	return &InternalHandler{cartService: cartService, productService: productService}
}

// MergeCartItem adds a product variant to a user's cart, adding to the
// quantity of an existing line instead of rejecting it
// @Summary     Merge into cart
// @Description Internal endpoint. A selection matching an existing line increases its quantity.
// @Tags        internal
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       userId  path string             true "User ID"
// @Param       request body AddCartItemRequest true "Product selection"
// @Success     200 {object} services.CartView
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /internal/users/{userId}/cart/items [post]
func (h *InternalHandler) MergeCartItem(c *gin.Context) {
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	sel, err := h.productService.SelectForCart(c.Request.Context(), req.ProductID, req.Size, req.ColorName, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.cartService.AddItemMerge(c.Request.Context(), userID, sel)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
