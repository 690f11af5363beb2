package models

import (
	"github.com/shopspring/decimal"
)

// ProductCategory groups products in the catalog.
type ProductCategory string

const (
	CategorySneakers ProductCategory = "sneakers"
	CategoryBoots    ProductCategory = "boots"
	CategorySandals  ProductCategory = "sandals"
	CategoryLoafers  ProductCategory = "loafers"
	CategorySports   ProductCategory = "sports"
	CategoryFormal   ProductCategory = "formal"
)

// ProductCategories lists every valid category.
var ProductCategories = []ProductCategory{
	CategorySneakers, CategoryBoots, CategorySandals, CategoryLoafers, CategorySports, CategoryFormal,
}

// IsValid reports whether c is a known category.
func (c ProductCategory) IsValid() bool {
	for _, known := range ProductCategories {
		if c == known {
			return true
		}
	}
	return false
}

// DefaultImageURL is used when a selected color carries no image.
const DefaultImageURL = "/images/default-shoe.jpg"

// DefaultColorCode is used when a selection carries no display code.
const DefaultColorCode = "#000000"

// Product is a catalog entry.
type Product struct {
	Base
	Name          string              `gorm:"not null" json:"name"`
	Description   string              `gorm:"type:text" json:"description"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	DiscountPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"discount_price"`
	Category      ProductCategory     `gorm:"type:varchar(20);not null;index" json:"category"`
	Brand         string              `gorm:"index" json:"brand"`
	Featured      bool                `gorm:"default:false" json:"featured"`
	Rating        float64             `gorm:"default:0" json:"rating"`
	NumReviews    int                 `gorm:"default:0" json:"num_reviews"`
	Sizes         []ProductSize       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"sizes"`
	Colors        []ProductColor      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"colors"`
}

// ProductSize is the stock held for one size of a product.
type ProductSize struct {
	Base
	ProductID string `gorm:"type:uuid;not null;index" json:"-"`
	Size      int    `gorm:"not null" json:"size"`
	Quantity  int    `gorm:"not null;default:0" json:"quantity"`
}

// ProductColor is a color variant with its gallery.
type ProductColor struct {
	Base
	ProductID string         `gorm:"type:uuid;not null;index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Code      string         `gorm:"size:7" json:"code"`
	Images    []ProductImage `gorm:"foreignKey:ColorID;constraint:OnDelete:CASCADE" json:"images"`
}

// ProductImage is a hosted image reference.
type ProductImage struct {
	Base
	ColorID   string `gorm:"type:uuid;not null;index" json:"-"`
	URL       string `gorm:"not null" json:"url"`
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id,omitempty"`
}

// EffectivePrice returns the discount price when it is set and lower than the list price.
func EffectivePrice(price decimal.Decimal, discount decimal.NullDecimal) decimal.Decimal {
	if discount.Valid && discount.Decimal.LessThan(price) {
		return discount.Decimal
	}
	return price
}

// EffectivePrice returns what a customer pays for one unit.
func (p *Product) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.Price, p.DiscountPrice)
}

// FindColor looks up a color variant by name.
func (p *Product) FindColor(name string) (*ProductColor, bool) {
	for i := range p.Colors {
		if p.Colors[i].Name == name {
			return &p.Colors[i], true
		}
	}
	return nil, false
}

// StockForSize returns the quantity on hand for a size and whether the size exists.
func (p *Product) StockForSize(size int) (int, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Quantity, true
		}
	}
	return 0, false
}

// AvailableSizes returns the sizes with stock on hand, in catalog order.
func (p *Product) AvailableSizes() []int {
	sizes := make([]int, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		if s.Quantity > 0 {
			sizes = append(sizes, s.Size)
		}
	}
	return sizes
}

// PrimaryImage returns the first image of the first color, or nil if the product has none.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Colors {
		if len(p.Colors[i].Images) > 0 {
			return &p.Colors[i].Images[0]
		}
	}
	return nil
}

// CartSelection is everything needed to create a cart line: the caller's
// choice of size, color and quantity plus a snapshot of the product.
type CartSelection struct {
	ProductID      string              `json:"product_id"`
	Name           string              `json:"name"`
	Price          decimal.Decimal     `json:"price"`
	DiscountPrice  decimal.NullDecimal `json:"discount_price"`
	Quantity       int                 `json:"quantity"`
	Size           int                 `json:"size"`
	ColorName      string              `json:"color_name"`
	ColorCode      string              `json:"color_code"`
	ImageURL       string              `json:"image_url"`
	ImageSecureURL string              `json:"image_secure_url"`
	Brand          string              `json:"brand"`
	Category       ProductCategory     `json:"category"`
}

// Key returns the deduplication key of the line this selection would create.
func (s CartSelection) Key() LineKey {
	return LineKey{ProductID: s.ProductID, Size: s.Size, ColorName: s.ColorName}
}

// NewCartSelection snapshots a product for the given size, color and quantity.
// The image is the first one of the selected color, falling back to defaultImage.
func NewCartSelection(p *Product, size int, colorName string, quantity int, defaultImage string) CartSelection {
	if quantity < 1 {
		quantity = 1
	}
	if defaultImage == "" {
		defaultImage = DefaultImageURL
	}

	sel := CartSelection{
		ProductID:      p.ID,
		Name:           p.Name,
		Price:          p.Price,
		DiscountPrice:  p.DiscountPrice,
		Quantity:       quantity,
		Size:           size,
		ColorName:      colorName,
		ColorCode:      DefaultColorCode,
		ImageURL:       defaultImage,
		ImageSecureURL: defaultImage,
		Brand:          p.Brand,
		Category:       p.Category,
	}

	if color, ok := p.FindColor(colorName); ok {
		if color.Code != "" {
			sel.ColorCode = color.Code
		}
		if len(color.Images) > 0 {
			img := color.Images[0]
			sel.ImageURL = img.URL
			sel.ImageSecureURL = img.SecureURL
			if sel.ImageSecureURL == "" {
				sel.ImageSecureURL = img.URL
			}
		}
	}
	return sel
}
