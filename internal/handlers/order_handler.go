package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"royalfootwear/internal/models"
	"royalfootwear/internal/pagination"
	"royalfootwear/internal/services"
)

// OrderHandler handles checkout and the customer's order history.
type OrderHandler struct {
	orderService services.OrderServicer
	auditService services.AuditServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService services.OrderServicer, auditService services.AuditServicer) *OrderHandler {
	return &OrderHandler{orderService: orderService, auditService: auditService}
}

// PlaceOrderRequest represents the checkout payload.
type PlaceOrderRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required,payment_method"`
	Notes         string               `json:"notes" binding:"max=500"`
}

// PlaceOrder converts the cart into an order
// @Summary     Place order
// @Description Price the cart (10% tax, free shipping above 100, otherwise 10), persist the order and clear the cart.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PlaceOrderRequest true "Payment method and notes"
// @Success     201 {object} models.Order
// @Failure     400 {object} ErrorResponse "Invalid input or empty cart"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Order could not be saved"
// @Router      /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), userID, req.PaymentMethod, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, userID, services.AuditPlaceOrder, models.AuditResourceOrder, order.ID, map[string]any{"grand_total": order.GrandTotal.StringFixed(2), "payment_method": order.PaymentMethod})

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// ListOrders returns the customer's orders, newest first
// @Summary     List my orders
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 12, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Order]
// @Router      /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.orderService.ListUserOrders(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOrder returns one of the customer's orders
// @Summary     Get my order
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} models.Order
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.GetUserOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
