package models

import (
	"github.com/shopspring/decimal"
)

// LineKey identifies a cart line for deduplication: a cart never holds two
// lines with the same product, size and color.
type LineKey struct {
	ProductID string
	Size      int
	ColorName string
}

// Cart is the single pending-purchase collection of a user.
type Cart struct {
	Aggregate
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem is one line of a cart with a snapshot of the product at the time it was added.
type CartItem struct {
	Base
	CartID         string              `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line" json:"-"`
	ProductID      string              `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line" json:"product_id"`
	Name           string              `gorm:"not null" json:"name"`
	Price          decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	DiscountPrice  decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"discount_price"`
	Quantity       int                 `gorm:"not null" json:"quantity"`
	Size           int                 `gorm:"not null;uniqueIndex:idx_cart_line" json:"size"`
	ColorName      string              `gorm:"not null;uniqueIndex:idx_cart_line" json:"color_name"`
	ColorCode      string              `gorm:"size:7" json:"color_code"`
	ImageURL       string              `json:"image_url"`
	ImageSecureURL string              `json:"image_secure_url"`
	Brand          string              `json:"brand"`
	Category       ProductCategory     `gorm:"type:varchar(20)" json:"category"`
}

// Key returns the deduplication key of the line.
func (i CartItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.Size, ColorName: i.ColorName}
}

// EffectivePrice is the unit price the customer pays.
func (i CartItem) EffectivePrice() decimal.Decimal {
	return EffectivePrice(i.Price, i.DiscountPrice)
}

// LineTotal is the effective unit price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewCartItem builds a line for cartID from a selection.
func NewCartItem(cartID string, sel CartSelection) CartItem {
	qty := sel.Quantity
	if qty < 1 {
		qty = 1
	}
	code := sel.ColorCode
	if code == "" {
		code = DefaultColorCode
	}
	return CartItem{
		CartID:         cartID,
		ProductID:      sel.ProductID,
		Name:           sel.Name,
		Price:          sel.Price,
		DiscountPrice:  sel.DiscountPrice,
		Quantity:       qty,
		Size:           sel.Size,
		ColorName:      sel.ColorName,
		ColorCode:      code,
		ImageURL:       sel.ImageURL,
		ImageSecureURL: sel.ImageSecureURL,
		Brand:          sel.Brand,
		Category:       sel.Category,
	}
}

// FindLine returns the index of the line with the given key, or -1.
func (c *Cart) FindLine(key LineKey) int {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return i
		}
	}
	return -1
}

// FindItem returns the index of the line with the given id, or -1.
func (c *Cart) FindItem(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// CartTotals is the derived summary of a cart.
//
// Subtotal is the list-price sum, DiscountTotal the savings from discount
// prices, and Total what the customer pays.
type CartTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	LineCount     int             `json:"line_count"`
}

// ComputeCartTotals derives the totals of a set of cart lines.
func ComputeCartTotals(items []CartItem) CartTotals {
	totals := CartTotals{
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		LineCount:     len(items),
	}
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		totals.Subtotal = totals.Subtotal.Add(item.Price.Mul(qty))
		if item.DiscountPrice.Valid && item.DiscountPrice.Decimal.LessThan(item.Price) {
			totals.DiscountTotal = totals.DiscountTotal.Add(item.Price.Sub(item.DiscountPrice.Decimal).Mul(qty))
		}
		totals.ItemCount += item.Quantity
	}
	totals.Total = totals.Subtotal.Sub(totals.DiscountTotal)
	return totals
}

// Totals derives the totals of the cart.
func (c *Cart) Totals() CartTotals {
	return ComputeCartTotals(c.Items)
}
