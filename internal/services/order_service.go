package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/lock"
	"royalfootwear/internal/logger"
	"royalfootwear/internal/metrics"
	"royalfootwear/internal/models"
	"royalfootwear/internal/pagination"
)

// orderService turns carts into orders and manages their fulfillment.
type orderService struct {
	db      *gorm.DB
	guard   guard
	pricing models.PricingPolicy
	metrics *metrics.Metrics
}

// NewOrderService creates a new OrderServicer.
func NewOrderService(db *gorm.DB, locker lock.Locker, pricing models.PricingPolicy, m *metrics.Metrics) OrderServicer {
	return &orderService{
		db:      db,
		guard:   newGuard(locker, m),
		pricing: pricing,
		metrics: m,
	}
}

// PlaceOrder converts the user's cart into an order and then clears the cart.
//
// The cart lock is held across both phases. Phase one writes the order in
// its own transaction; phase two clears the cart. If phase one fails the cart
// is untouched. If phase two fails the order stands and the stale cart is
// logged, since a leftover cart loses nothing.
func (s *orderService) PlaceOrder(ctx context.Context, userID string, method models.PaymentMethod, notes string) (*models.Order, error) {
	if !method.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment method")
	}
	log := logger.For("orders")

	var order *models.Order
	err := s.guard.run(ctx, lock.Keys.Cart(userID), "cart", func() error {
		db := s.db.WithContext(ctx)

		var cart *models.Cart
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			cart, err = loadCart(tx, userID)
			if err != nil {
				return err
			}
			if cart == nil || len(cart.Items) == 0 {
				return apperrors.ErrEmptyCart
			}

			var user models.User
			if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrUserNotFound
				}
				return err
			}

			order = s.buildOrder(&user, cart, method, notes)
			return tx.Create(order).Error
		})
		if err != nil {
			order = nil
			return err
		}

		s.metrics.RecordOrderPlaced(order.GrandTotal.InexactFloat64())
		log.Infow("order placed", "order_id", order.ID, "user_id", userID, "grand_total", order.GrandTotal.StringFixed(2))

		if err := s.clearCart(db, cart); err != nil {
			s.metrics.RecordCartClearFailure()
			log.Errorw("order placed but cart was not cleared", "order_id", order.ID, "cart_id", cart.ID, "error", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) buildOrder(user *models.User, cart *models.Cart, method models.PaymentMethod, notes string) *models.Order {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.NewOrderItem(line))
	}
	quote := s.pricing.Quote(cart.Totals().Total)

	return &models.Order{
		UserID:          user.ID,
		Items:           items,
		ShippingAddress: user.Address,
		PaymentMethod:   method,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderProcessing,
		Subtotal:        quote.Subtotal,
		TaxAmount:       quote.TaxAmount,
		ShippingAmount:  quote.ShippingAmount,
		GrandTotal:      quote.GrandTotal,
		Notes:           strings.TrimSpace(notes),
	}
}

// clearCart empties the cart loaded in phase one. The caller holds the cart lock.
func (s *orderService) clearCart(db *gorm.DB, cart *models.Cart) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := clearCartItems(tx, cart); err != nil {
			return err
		}
		return bumpVersion(tx, &models.Cart{}, cart.ID, cart.Version)
	})
}

func preloadOrderItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	})
}

func (s *orderService) findOrder(ctx context.Context, query *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := preloadOrderItems(query).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

// GetUserOrder retrieves one of the user's own orders.
func (s *orderService) GetUserOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	return s.findOrder(ctx, s.db.WithContext(ctx).Where("id = ? AND user_id = ?", orderID, userID))
}

// GetOrderByID retrieves any order with its customer.
func (s *orderService) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	return s.findOrder(ctx, s.db.WithContext(ctx).Preload("User").Where("id = ?", orderID))
}

// ListUserOrders returns the user's orders, newest first.
func (s *orderService) ListUserOrders(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	order := func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }
	resp, err := pagination.Find[models.Order](query, page, order, preloadOrderItems)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

// ListOrders returns all orders matching filter, newest first.
func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != nil {
		query = query.Where("order_status = ?", *filter.Status)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	order := func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC").Preload("User") }
	resp, err := pagination.Find[models.Order](query, page, order, preloadOrderItems)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

// updateOrder loads the order in a transaction, lets check validate the
// change, then writes updates.
func (s *orderService) updateOrder(ctx context.Context, orderID string, check func(*models.Order) error, updates map[string]any) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrOrderNotFound
			}
			return err
		}
		if check != nil {
			if err := check(&order); err != nil {
				return err
			}
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetOrderByID(ctx, orderID)
}

// UpdateOrderStatus moves the fulfillment status along the allowed transitions.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid order status")
	}
	return s.updateOrder(ctx, orderID, func(o *models.Order) error {
		if !o.OrderStatus.CanTransitionTo(status) {
			return apperrors.WithDetails(apperrors.ErrInvalidStatusTransition,
				"Order status cannot change from "+string(o.OrderStatus)+" to "+string(status),
				map[string]any{"from": o.OrderStatus, "to": status})
		}
		return nil
	}, map[string]any{"order_status": status})
}

// UpdatePaymentStatus sets the payment status. Payment status moves independently of fulfillment.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment status")
	}
	return s.updateOrder(ctx, orderID, nil, map[string]any{"payment_status": status})
}

// SetTrackingNumber records the carrier tracking number.
func (s *orderService) SetTrackingNumber(ctx context.Context, orderID, trackingNumber string) (*models.Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tracking number is required")
	}
	return s.updateOrder(ctx, orderID, nil, map[string]any{"tracking_number": trackingNumber})
}
