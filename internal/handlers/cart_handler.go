package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"royalfootwear/internal/logger"
	"royalfootwear/internal/models"
	"royalfootwear/internal/services"
)

// CartHandler handles the shopping cart of the authenticated user.
type CartHandler struct {
	cartService    services.CartServicer
	productService services.ProductServicer
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService services.CartServicer, productService services.ProductServicer) *CartHandler {
	return &CartHandler{cartService: cartService, productService: productService}
}

// AddCartItemRequest selects a product variant for the cart.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Size      int    `json:"size" binding:"required,gt=0"`
	ColorName string `json:"color_name" binding:"required,max=50"`
	Quantity  int    `json:"quantity" binding:"omitempty,gte=1,lte=99"`
}

// UpdateCartItemRequest sets the quantity of a cart line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartItemQuery identifies a cart line by product, size and color.
type CartItemQuery struct {
	ProductID string `form:"product_id" binding:"required,uuid"`
	Size      int    `form:"size" binding:"required,gt=0"`
	ColorName string `form:"color_name" binding:"required"`
}

// GetCart returns the cart with its totals
// @Summary     Get cart
// @Tags        cart
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.CartView
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddItem adds a product variant to the cart. A variant already in the cart is rejected.
// @Summary     Add to cart
// @Description Add a product in a size and color. Adding a variant that is already in the cart fails with DUPLICATE_CART_ITEM.
// @Tags        cart
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddCartItemRequest true "Product selection"
// @Success     201 {object} services.CartView
// @Failure     400 {object} ErrorResponse "Invalid input, unavailable color or size"
// @Failure     409 {object} ErrorResponse "Line already in cart"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, err := getUserID(c)
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

	view, err := h.cartService.AddItemStrict(c.Request.Context(), userID, sel)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateItem sets the quantity of a cart line
// @Summary     Update cart line quantity
// @Tags        cart
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       itemId  path string                true "Cart line ID"
// @Param       request body UpdateCartItemRequest true "New quantity"
// @Success     200 {object} services.CartView
// @Failure     400 {object} ErrorResponse "Quantity below 1"
// @Failure     404 {object} ErrorResponse "Cart line not found"
// @Router      /cart/items/{itemId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	itemID, err := parsePathID(c, "itemId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	view, err := h.cartService.UpdateQuantity(c.Request.Context(), userID, itemID, *req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RemoveItem deletes a cart line
// @Summary     Remove cart line
// @Tags        cart
// @Produce     json
// @Security    BearerAuth
// @Param       itemId path string true "Cart line ID"
// @Success     200 {object} services.CartView
// @Failure     404 {object} ErrorResponse "Cart line not found"
// @Router      /cart/items/{itemId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	itemID, err := parsePathID(c, "itemId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.cartService.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ClearCart empties the cart
// @Summary     Clear cart
// @Tags        cart
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.CartView
// @Router      /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.cartService.Clear(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetCount returns the number of units in the cart. It reports 0 rather than failing.
// @Summary     Cart unit count
// @Tags        cart
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int
// @Router      /cart/count [get]
func (h *CartHandler) GetCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.cartService.Count(c.Request.Context(), userID)
	if err != nil {
		logger.For("cart").Warnw("cart count failed", "user_id", userID, "error", err)
		count = 0
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// CheckItem reports whether a product variant is in the cart
// @Summary     Check cart line
// @Tags        cart
// @Produce     json
// @Security    BearerAuth
// @Param       product_id query string true "Product ID"
// @Param       size       query int    true "Size"
// @Param       color_name query string true "Color name"
// @Success     200 {object} map[string]bool
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /cart/check [get]
func (h *CartHandler) CheckItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query CartItemQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	inCart, err := h.cartService.ContainsItem(c.Request.Context(), userID, models.LineKey{
		ProductID: query.ProductID,
		Size:      query.Size,
		ColorName: query.ColorName,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_cart": inCart})
}
