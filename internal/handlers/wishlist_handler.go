package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"royalfootwear/internal/services"
)

// WishlistHandler handles the wishlist of the authenticated user.
type WishlistHandler struct {
	wishlistService services.WishlistServicer
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(wishlistService services.WishlistServicer) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// AddWishlistItemRequest names the product to save.
type AddWishlistItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
}

// MoveToCartRequest chooses the variant a wishlist product enters the cart as.
type MoveToCartRequest struct {
	Size      int    `json:"size" binding:"required,gt=0"`
	ColorName string `json:"color_name" binding:"required,max=50"`
	Quantity  int    `json:"quantity" binding:"omitempty,gte=1,lte=99"`
}

// GetWishlist returns the wishlist with its summary
// @Summary     Get wishlist
// @Tags        wishlist
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.WishlistView
// @Router      /wishlist [get]
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.wishlistService.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddItem saves a product to the wishlist
// @Summary     Add to wishlist
// @Tags        wishlist
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddWishlistItemRequest true "Product"
// @Success     201 {object} services.WishlistView
// @Failure     400 {object} ErrorResponse "Already on the wishlist"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /wishlist/items [post]
func (h *WishlistHandler) AddItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	view, err := h.wishlistService.AddItem(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// RemoveItem removes a product from the wishlist
// @Summary     Remove from wishlist
// @Tags        wishlist
// @Produce     json
// @Security    BearerAuth
// @Param       productId path string true "Product ID"
// @Success     200 {object} services.WishlistView
// @Failure     404 {object} ErrorResponse "Wishlist or item not found"
// @Router      /wishlist/items/{productId} [delete]
func (h *WishlistHandler) RemoveItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	productID, err := parsePathID(c, "productId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.wishlistService.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MoveToCart moves a wishlist product into the cart
// @Summary     Move wishlist item to cart
// @Description The product leaves the wishlist and enters the cart in the chosen size and color. If the cart rejects it, it stays on the wishlist.
// @Tags        wishlist
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       productId path string            true "Product ID"
// @Param       request   body MoveToCartRequest true "Variant"
// @Success     200 {object} services.CartView
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Line already in cart"
// @Failure     404 {object} ErrorResponse "Wishlist or item not found"
// @Router      /wishlist/items/{productId}/move-to-cart [post]
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	productID, err := parsePathID(c, "productId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MoveToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	view, err := h.wishlistService.MoveItemToCart(c.Request.Context(), userID, productID, req.Size, req.ColorName, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MoveFromCart saves a cart line's product to the wishlist and removes the line
// @Summary     Move cart line to wishlist
// @Tags        wishlist
// @Produce     json
// @Security    BearerAuth
// @Param       itemId path string true "Cart line ID"
// @Success     200 {object} services.CartView
// @Failure     404 {object} ErrorResponse "Cart line not found"
// @Router      /wishlist/from-cart/{itemId} [post]
func (h *WishlistHandler) MoveFromCart(c *gin.Context) {
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

	view, err := h.wishlistService.MoveCartItemToWishlist(c.Request.Context(), userID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CheckItem reports whether a product is on the wishlist
// @Summary     Check wishlist
// @Tags        wishlist
// @Produce     json
// @Security    BearerAuth
// @Param       productId path string true "Product ID"
// @Success     200 {object} map[string]bool
// @Router      /wishlist/check/{productId} [get]
func (h *WishlistHandler) CheckItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	productID, err := parsePathID(c, "productId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	ok, err := h.wishlistService.Contains(c.Request.Context(), userID, productID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_wishlist": ok})
}

// GetCount returns the number of products on the wishlist
// @Summary     Wishlist count
// @Tags        wishlist
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int
// @Router      /wishlist/count [get]
func (h *WishlistHandler) GetCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.wishlistService.Count(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// ClearWishlist empties the wishlist
// @Summary     Clear wishlist
// @Tags        wishlist
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.WishlistView
// @Router      /wishlist [delete]
func (h *WishlistHandler) ClearWishlist(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.wishlistService.Clear(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
