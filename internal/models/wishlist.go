package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImageRef is a stored image reference.
type ImageRef struct {
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id,omitempty"`
}

// ColorOption is a snapshot of one color variant.
type ColorOption struct {
	Name   string     `json:"name"`
	Code   string     `json:"code"`
	Images []ImageRef `json:"images"`
}

// SizeOption is a snapshot of one size and its stock.
type SizeOption struct {
	Size     int `json:"size"`
	Quantity int `json:"quantity"`
}

// Wishlist is the saved-for-later collection of a user.
type Wishlist struct {
	Aggregate
	Items []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"items"`
}

// WishlistItem is a full product snapshot. A product appears at most once per wishlist.
type WishlistItem struct {
	Base
	WishlistID     string              `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_product" json:"-"`
	ProductID      string              `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_product" json:"product_id"`
	Name           string              `gorm:"not null" json:"name"`
	Price          decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	DiscountPrice  decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"discount_price"`
	ImageURL       string              `json:"image_url"`
	ImageSecureURL string              `json:"image_secure_url"`
	ImagePublicID  string              `json:"image_public_id,omitempty"`
	Brand          string              `json:"brand"`
	Category       ProductCategory     `gorm:"type:varchar(20)" json:"category"`
	Colors         []ColorOption       `gorm:"serializer:json" json:"colors"`
	Sizes          []SizeOption        `gorm:"serializer:json" json:"sizes"`
	AddedAt        time.Time           `gorm:"not null" json:"added_at"`
}

// NewWishlistItem snapshots a product for a wishlist. addedAt is supplied by the caller's clock.
func NewWishlistItem(wishlistID string, p *Product, addedAt time.Time) WishlistItem {
	item := WishlistItem{
		WishlistID:     wishlistID,
		ProductID:      p.ID,
		Name:           p.Name,
		Price:          p.Price,
		DiscountPrice:  p.DiscountPrice,
		ImageURL:       DefaultImageURL,
		ImageSecureURL: DefaultImageURL,
		Brand:          p.Brand,
		Category:       p.Category,
		Colors:         make([]ColorOption, 0, len(p.Colors)),
		Sizes:          make([]SizeOption, 0, len(p.Sizes)),
		AddedAt:        addedAt,
	}

	if img := p.PrimaryImage(); img != nil {
		item.ImageURL = img.URL
		item.ImageSecureURL = img.SecureURL
		item.ImagePublicID = img.PublicID
	}
	for _, c := range p.Colors {
		opt := ColorOption{Name: c.Name, Code: c.Code, Images: make([]ImageRef, 0, len(c.Images))}
		for _, img := range c.Images {
			opt.Images = append(opt.Images, ImageRef{URL: img.URL, SecureURL: img.SecureURL, PublicID: img.PublicID})
		}
		item.Colors = append(item.Colors, opt)
	}
	for _, s := range p.Sizes {
		item.Sizes = append(item.Sizes, SizeOption{Size: s.Size, Quantity: s.Quantity})
	}
	return item
}

// ToCartSelection turns the snapshot into a cart selection using the
// caller's size, color and quantity. Price, discount, brand and category come
// from the snapshot unchanged. The image is the first one of the chosen color,
// or the snapshot's primary image when that color has none.
func (w WishlistItem) ToCartSelection(size int, colorName string, quantity int) CartSelection {
	if quantity < 1 {
		quantity = 1
	}
	sel := CartSelection{
		ProductID:      w.ProductID,
		Name:           w.Name,
		Price:          w.Price,
		DiscountPrice:  w.DiscountPrice,
		Quantity:       quantity,
		Size:           size,
		ColorName:      colorName,
		ColorCode:      DefaultColorCode,
		ImageURL:       w.ImageURL,
		ImageSecureURL: w.ImageSecureURL,
		Brand:          w.Brand,
		Category:       w.Category,
	}
	for _, c := range w.Colors {
		if c.Name != colorName {
			continue
		}
		if c.Code != "" {
			sel.ColorCode = c.Code
		}
		if len(c.Images) > 0 {
			sel.ImageURL = c.Images[0].URL
			sel.ImageSecureURL = c.Images[0].SecureURL
		}
		break
	}
	if sel.ImageURL == "" {
		sel.ImageURL = DefaultImageURL
	}
	if sel.ImageSecureURL == "" {
		sel.ImageSecureURL = sel.ImageURL
	}
	return sel
}

// WishlistSummary is the derived summary of a wishlist.
type WishlistSummary struct {
	ItemCount     int               `json:"item_count"`
	TotalValue    decimal.Decimal   `json:"total_value"`
	TotalDiscount decimal.Decimal   `json:"total_discount"`
	Categories    []ProductCategory `json:"categories"`
}

// SummarizeWishlist derives the summary of a set of wishlist items.
// Categories are distinct and in first-seen order.
func SummarizeWishlist(items []WishlistItem) WishlistSummary {
	summary := WishlistSummary{
		ItemCount:     len(items),
		TotalValue:    decimal.Zero,
		TotalDiscount: decimal.Zero,
		Categories:    []ProductCategory{},
	}
	seen := make(map[ProductCategory]bool, len(items))
	for _, item := range items {
		if item.DiscountPrice.Valid {
			summary.TotalValue = summary.TotalValue.Add(item.DiscountPrice.Decimal)
		} else {
			summary.TotalValue = summary.TotalValue.Add(item.Price)
		}
		if item.DiscountPrice.Valid && item.DiscountPrice.Decimal.LessThan(item.Price) {
			summary.TotalDiscount = summary.TotalDiscount.Add(item.Price.Sub(item.DiscountPrice.Decimal))
		}
		if !seen[item.Category] {
			seen[item.Category] = true
			summary.Categories = append(summary.Categories, item.Category)
		}
	}
	return summary
}

// FindItem returns the index of the item for productID, or -1.
func (w *Wishlist) FindItem(productID string) int {
	for i := range w.Items {
		if w.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Summary derives the summary of the wishlist.
func (w *Wishlist) Summary() WishlistSummary {
	return SummarizeWishlist(w.Items)
}
