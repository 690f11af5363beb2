package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/models"
	"royalfootwear/internal/pagination"
)

// productService handles catalog logic.
type productService struct {
	db           *gorm.DB
	defaultImage string
}

// NewProductService creates a new ProductServicer. defaultImage is used for
// cart lines whose selected color has no image.
func NewProductService(db *gorm.DB, defaultImage string) ProductServicer {
	if defaultImage == "" {
		defaultImage = models.DefaultImageURL
	}
	return &productService{db: db, defaultImage: defaultImage}
}

func preloadProduct(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("size ASC") }).
		Preload("Colors", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Colors.Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })
}

// GetProductByID retrieves a product with its sizes, colors and images.
func (s *productService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := preloadProduct(s.db.WithContext(ctx)).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &product, nil
}

// ListProducts returns a filtered, sorted page of the catalog.
func (s *productService) ListProducts(ctx context.Context, filter ProductFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?", like, like, like)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	if filter.Discounted {
		query = query.Where("discount_price IS NOT NULL AND discount_price > 0")
	}
	if filter.InStock != nil {
		if *filter.InStock {
			query = query.Where(hasStock)
		} else {
			query = query.Where("NOT " + hasStock)
		}
	}

	order := func(db *gorm.DB) *gorm.DB { return db.Order(sortClause(filter.Sort)) }
	resp, err := pagination.Find[models.Product](query, page, order, preloadProduct)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

const hasStock = "EXISTS (SELECT 1 FROM product_sizes ps WHERE ps.product_id = products.id AND ps.quantity > 0 AND ps.deleted_at IS NULL)"

func sortClause(sort string) string {
	switch sort {
	case SortOldest:
		return "created_at ASC"
	case SortPriceLow:
		return "price ASC"
	case SortPriceHigh:
		return "price DESC"
	case SortRating:
		return "rating DESC"
	case SortNameAsc:
		return "name ASC"
	case SortNameDesc:
		return "name DESC"
	default:
		return "created_at DESC"
	}
}

// ListBrands returns the distinct brands in the catalog.
func (s *productService) ListBrands(ctx context.Context) ([]string, error) {
	var brands []string
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("brand <> ''").
		Distinct().Order("brand ASC").Pluck("brand", &brands).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return brands, nil
}

// AvailableSizes returns the sizes of a product that have stock.
func (s *productService) AvailableSizes(ctx context.Context, id string) ([]int, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return product.AvailableSizes(), nil
}

// CheckStock reports whether quantity units of size are on hand.
func (s *productService) CheckStock(ctx context.Context, productID string, size, quantity int) (bool, error) {
	if quantity < 1 {
		return false, apperrors.ErrInvalidQuantity
	}
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return false, err
	}
	stock, ok := product.StockForSize(size)
	return ok && stock >= quantity, nil
}

// SelectForCart validates a customer's choice against the catalog and
// snapshots the product into a cart selection.
func (s *productService) SelectForCart(ctx context.Context, productID string, size int, colorName string, quantity int) (models.CartSelection, error) {
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return models.CartSelection{}, err
	}
	if _, ok := product.FindColor(colorName); !ok {
		return models.CartSelection{}, apperrors.ErrColorUnavailable
	}
	if stock, ok := product.StockForSize(size); !ok || stock <= 0 {
		return models.CartSelection{}, apperrors.ErrSizeUnavailable
	}
	return models.NewCartSelection(product, size, colorName, quantity, s.defaultImage), nil
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if in.Price.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
	}
	if in.DiscountPrice.Valid && in.DiscountPrice.Decimal.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "discount price cannot be negative")
	}
	if !in.Category.IsValid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category")
	}
	return nil
}

func buildVariants(productID string, in ProductInput) ([]models.ProductSize, []models.ProductColor) {
	sizes := make([]models.ProductSize, 0, len(in.Sizes))
	for _, s := range in.Sizes {
		sizes = append(sizes, models.ProductSize{ProductID: productID, Size: s.Size, Quantity: s.Quantity})
	}
	colors := make([]models.ProductColor, 0, len(in.Colors))
	for _, c := range in.Colors {
		color := models.ProductColor{ProductID: productID, Name: c.Name, Code: c.Code}
		for _, img := range c.Images {
			color.Images = append(color.Images, models.ProductImage{URL: img.URL, SecureURL: img.SecureURL, PublicID: img.PublicID})
		}
		colors = append(colors, color)
	}
	return sizes, colors
}

// CreateProduct adds a product to the catalog.
func (s *productService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Category:      in.Category,
		Brand:         in.Brand,
		Featured:      in.Featured,
	}
	product.Sizes, product.Colors = buildVariants("", in)

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetProductByID(ctx, product.ID)
}

// UpdateProduct replaces a product's content, sizes and colors. Existing
// cart lines, wishlist entries and orders keep their snapshots.
func (s *productService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrProductNotFound
			}
			return err
		}

		updates := map[string]any{
			"name":           strings.TrimSpace(in.Name),
			"description":    in.Description,
			"price":          in.Price,
			"discount_price": in.DiscountPrice,
			"category":       in.Category,
			"brand":          in.Brand,
			"featured":       in.Featured,
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return err
		}

		var colorIDs []string
		if err := tx.Model(&models.ProductColor{}).Where("product_id = ?", id).Pluck("id", &colorIDs).Error; err != nil {
			return err
		}
		if len(colorIDs) > 0 {
			if err := tx.Unscoped().Where("color_id IN ?", colorIDs).Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("product_id = ?", id).Delete(&models.ProductColor{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("product_id = ?", id).Delete(&models.ProductSize{}).Error; err != nil {
			return err
		}

		sizes, colors := buildVariants(id, in)
		if len(sizes) > 0 {
			if err := tx.Create(&sizes).Error; err != nil {
				return err
			}
		}
		if len(colors) > 0 {
			if err := tx.Create(&colors).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetProductByID(ctx, id)
}

// DeleteProduct soft-deletes a product.
func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}
