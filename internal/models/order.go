package models

import (
	"github.com/shopspring/decimal"
)

// PaymentMethod is how an order is paid.
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentCashOnDelivery:
		return true
	}
	return false
}

// PaymentStatus is the payment axis of an order. Any status may follow any other.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// IsValid reports whether s is a known payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// OrderStatus is the fulfillment axis of an order.
type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
	OrderDelivered:  nil,
	OrderCancelled:  nil,
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s.IsValid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether the fulfillment status may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is an immutable record of a finalized purchase. The totals are
// computed once at placement; only statuses, tracking number and notes change later.
type Order struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress Address         `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:pending" json:"payment_status"`
	OrderStatus     OrderStatus     `gorm:"type:varchar(20);not null;default:processing;index" json:"order_status"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax_amount"`
	ShippingAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_amount"`
	GrandTotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"grand_total"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
}

// OrderItem is a copied snapshot of a cart line. Price is the list price and
// UnitPrice what the customer paid per unit.
type OrderItem struct {
	Base
	OrderID        string          `gorm:"type:uuid;not null;index" json:"-"`
	ProductID      string          `gorm:"type:uuid;not null" json:"product_id"`
	Name           string          `gorm:"not null" json:"name"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Size           int             `gorm:"not null" json:"size"`
	ColorName      string          `json:"color_name"`
	ColorCode      string          `json:"color_code"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	ImageURL       string          `json:"image_url"`
	ImageSecureURL string          `json:"image_secure_url"`
	Brand          string          `json:"brand"`
	Category       ProductCategory `gorm:"type:varchar(20)" json:"category"`
}

// NewOrderItem copies a cart line into an order item.
func NewOrderItem(line CartItem) OrderItem {
	return OrderItem{
		ProductID:      line.ProductID,
		Name:           line.Name,
		Quantity:       line.Quantity,
		Size:           line.Size,
		ColorName:      line.ColorName,
		ColorCode:      line.ColorCode,
		Price:          line.Price,
		UnitPrice:      line.EffectivePrice(),
		ImageURL:       line.ImageURL,
		ImageSecureURL: line.ImageSecureURL,
		Brand:          line.Brand,
		Category:       line.Category,
	}
}

// PricingPolicy turns an order subtotal into tax, shipping and grand total.
type PricingPolicy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShipping          decimal.Decimal
}

// DefaultPricingPolicy is 10% tax with free shipping on subtotals above 100, else 10.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:               decimal.NewFromFloat(0.10),
		FreeShippingThreshold: decimal.NewFromInt(100),
		FlatShipping:          decimal.NewFromInt(10),
	}
}

// OrderQuote is the priced breakdown of an order.
type OrderQuote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// Quote prices a subtotal. Tax is rounded to 2 decimal places; shipping is
// free only when the subtotal is strictly above the threshold.
func (p PricingPolicy) Quote(subtotal decimal.Decimal) OrderQuote {
	tax := subtotal.Mul(p.TaxRate).Round(2)
	shipping := p.FlatShipping
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	return OrderQuote{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ShippingAmount: shipping,
		GrandTotal:     subtotal.Add(tax).Add(shipping),
	}
}
