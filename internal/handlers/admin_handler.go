package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/models"
	"royalfootwear/internal/pagination"
	"royalfootwear/internal/services"
)

// AdminHandler handles catalog, order and user administration.
type AdminHandler struct {
	productService services.ProductServicer
	orderService   services.OrderServicer
	userService    services.UserServicer
	auditService   services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(productService services.ProductServicer, orderService services.OrderServicer, userService services.UserServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{
		productService: productService,
		orderService:   orderService,
		userService:    userService,
		auditService:   auditService,
	}
}

// ImageRequest is a hosted image reference.
type ImageRequest struct {
	URL       string `json:"url" binding:"required,url"`
	SecureURL string `json:"secure_url" binding:"omitempty,url"`
	PublicID  string `json:"public_id" binding:"max=200"`
}

// ColorRequest is a color variant with its gallery.
type ColorRequest struct {
	Name   string         `json:"name" binding:"required,max=50"`
	Code   string         `json:"code" binding:"omitempty,hex_color"`
	Images []ImageRequest `json:"images" binding:"dive"`
}

// SizeRequest is the stock held for one size.
type SizeRequest struct {
	Size     int `json:"size" binding:"required,gt=0"`
	Quantity int `json:"quantity" binding:"gte=0"`
}

// ProductRequest represents the product create and update payload.
type ProductRequest struct {
	Name          string                 `json:"name" binding:"required,max=200"`
	Description   string                 `json:"description" binding:"max=5000"`
	Price         decimal.Decimal        `json:"price"`
	DiscountPrice decimal.NullDecimal    `json:"discount_price"`
	Category      models.ProductCategory `json:"category" binding:"required,product_category"`
	Brand         string                 `json:"brand" binding:"max=100"`
	Featured      bool                   `json:"featured"`
	Sizes         []SizeRequest          `json:"sizes" binding:"dive"`
	Colors        []ColorRequest         `json:"colors" binding:"dive"`
}

func (r ProductRequest) input() services.ProductInput {
	in := services.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		Category:      r.Category,
		Brand:         r.Brand,
		Featured:      r.Featured,
		Sizes:         make([]models.SizeOption, 0, len(r.Sizes)),
		Colors:        make([]models.ColorOption, 0, len(r.Colors)),
	}
	for _, s := range r.Sizes {
		in.Sizes = append(in.Sizes, models.SizeOption{Size: s.Size, Quantity: s.Quantity})
	}
	for _, c := range r.Colors {
		color := models.ColorOption{Name: c.Name, Code: c.Code, Images: make([]models.ImageRef, 0, len(c.Images))}
		for _, img := range c.Images {
			color.Images = append(color.Images, models.ImageRef{URL: img.URL, SecureURL: img.SecureURL, PublicID: img.PublicID})
		}
		in.Colors = append(in.Colors, color)
	}
	return in
}

// OrderStatusRequest sets the fulfillment status.
type OrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,order_status"`
}

// PaymentStatusRequest sets the payment status.
type PaymentStatusRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required,payment_status"`
}

// TrackingRequest sets the carrier tracking number.
type TrackingRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required,max=100"`
}

// OrderListQuery filters the admin order list.
type OrderListQuery struct {
	Status string `form:"status" binding:"omitempty,order_status"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// UserActiveRequest enables or disables an account.
type UserActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// CreateProduct adds a product to the catalog
// @Summary     Create product
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ProductRequest true "Product"
// @Success     201 {object} models.Product
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admins only"
// @Router      /admin/products [post]
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, userID, services.AuditCreateProduct, models.AuditResourceProduct, product.ID, map[string]any{"name": product.Name, "price": product.Price.StringFixed(2)})
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct replaces a product's content and variants
// @Summary     Update product
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Product ID"
// @Param       request body ProductRequest true "Product"
// @Success     200 {object} models.Product
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, userID, services.AuditUpdateProduct, models.AuditResourceProduct, product.ID, map[string]any{"name": product.Name, "price": product.Price.StringFixed(2)})
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes a product from the catalog
// @Summary     Delete product
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Product ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, userID, services.AuditDeleteProduct, models.AuditResourceProduct, id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// ListOrders returns all orders, newest first
// @Summary     List orders
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Order status"
// @Param       user_id   query string false "Customer ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 12, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Order]
// @Router      /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	var query OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter := services.OrderFilter{UserID: query.UserID}
	if query.Status != "" {
		status := models.OrderStatus(query.Status)
		filter.Status = &status
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOrder returns any order with its customer
// @Summary     Get order
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} models.Order
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /admin/orders/{id} [get]
func (h *AdminHandler) GetOrder(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetOrderHistory returns the audit trail of an order
// @Summary     Order history
// @Description Admin actions recorded against the order, oldest first.
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} map[string]interface{} "history"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /admin/orders/{id}/history [get]
func (h *AdminHandler) GetOrderHistory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.orderService.GetOrderByID(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	history, err := h.auditService.History(c.Request.Context(), models.AuditResourceOrder, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// UpdateOrderStatus moves an order along its fulfillment path
// @Summary     Update order status
// @Description processing may become shipped or cancelled; shipped may become delivered or cancelled.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Order ID"
// @Param       request body OrderStatusRequest true "New status"
// @Success     200 {object} models.Order
// @Failure     400 {object} ErrorResponse "Invalid status transition"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /admin/orders/{id}/status [put]
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, userID, services.AuditUpdateOrderStatus, models.AuditResourceOrder, id, map[string]any{"order_status": req.Status})
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdatePaymentStatus sets the payment status of an order
// @Summary     Update payment status
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Order ID"
// @Param       request body PaymentStatusRequest true "New status"
// @Success     200 {object} models.Order
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /admin/orders/{id}/payment [put]
func (h *AdminHandler) UpdatePaymentStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, userID, services.AuditUpdatePayment, models.AuditResourceOrder, id, map[string]any{"payment_status": req.Status})
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// SetTrackingNumber records the carrier tracking number of an order
// @Summary     Set tracking number
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Order ID"
// @Param       request body TrackingRequest true "Tracking number"
// @Success     200 {object} models.Order
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /admin/orders/{id}/tracking [put]
func (h *AdminHandler) SetTrackingNumber(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	order, err := h.orderService.SetTrackingNumber(c.Request.Context(), id, req.TrackingNumber)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, userID, services.AuditSetTrackingNumber, models.AuditResourceOrder, id, map[string]any{"tracking_number": order.TrackingNumber})
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListUsers returns a page of accounts
// @Summary     List users
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 12, max 100)"
// @Success     200 {object} pagination.PageResponse[models.User]
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUser returns one account
// @Summary     Get user
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} models.User
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SetUserActive enables or disables an account
// @Summary     Enable or disable user
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "User ID"
// @Param       request body UserActiveRequest true "Active flag"
// @Success     200 {object} models.User
// @Failure     400 {object} ErrorResponse "Admins cannot disable themselves"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id}/active [put]
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UserActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	if id == userID && !*req.Active {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "You cannot disable your own account"))
		return
	}

	user, err := h.userService.SetUserActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, userID, services.AuditSetUserActive, models.AuditResourceUser, id, map[string]any{"active": *req.Active})
	c.JSON(http.StatusOK, gin.H{"user": user})
}
