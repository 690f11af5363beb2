package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/lock"
	"royalfootwear/internal/metrics"
	"royalfootwear/internal/models"
)

// errNoCart is returned by mutate when the user has no cart and the operation does not create one.
var errNoCart = errors.New("cart does not exist")

// cartService handles the cart aggregate.
type cartService struct {
	db    *gorm.DB
	guard guard
}

// NewCartService creates a new CartServicer.
func NewCartService(db *gorm.DB, locker lock.Locker, m *metrics.Metrics) CartServicer {
	return &cartService{db: db, guard: newGuard(locker, m)}
}

// loadCart loads a user's cart with its lines in insertion order. It returns nil, nil if the user has no cart.
func loadCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// clearCartItems deletes every line of cart. Lines are owned values, so the delete is hard.
func clearCartItems(tx *gorm.DB, cart *models.Cart) error {
	if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	cart.Items = nil
	return nil
}

func newCartView(cart *models.Cart) *CartView {
	if cart == nil {
		cart = &models.Cart{Items: []models.CartItem{}}
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &CartView{Cart: cart, Totals: cart.Totals()}
}

// mutate runs fn on the user's cart inside the guarded read-modify-write cycle.
// When create is false and no cart exists, mutate returns errNoCart without writing.
func (s *cartService) mutate(ctx context.Context, userID string, create bool, fn func(tx *gorm.DB, cart *models.Cart) error) (*CartView, error) {
	var view *CartView
	err := s.guard.run(ctx, lock.Keys.Cart(userID), "cart", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			cart, err := loadCart(tx, userID)
			if err != nil {
				return err
			}
			if cart == nil {
				if !create {
					return errNoCart
				}
				cart = &models.Cart{Aggregate: models.Aggregate{UserID: userID}}
				if err := createRoot(tx, cart); err != nil {
					return err
				}
			}

			if err := fn(tx, cart); err != nil {
				return err
			}
			if err := bumpVersion(tx, &models.Cart{}, cart.ID, cart.Version); err != nil {
				return err
			}

			refreshed, err := loadCart(tx, userID)
			if err != nil {
				return err
			}
			view = newCartView(refreshed)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func validateSelection(sel models.CartSelection) error {
	if sel.ProductID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "product is required")
	}
	if sel.Size <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "size is required")
	}
	if strings.TrimSpace(sel.ColorName) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "color is required")
	}
	return nil
}

// GetCart returns the user's cart, or an empty view if the user has none. It never creates a cart.
func (s *cartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := loadCart(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return newCartView(cart), nil
}

// AddItemStrict appends a new line, rejecting a selection whose line already exists.
func (s *cartService) AddItemStrict(ctx context.Context, userID string, sel models.CartSelection) (*CartView, error) {
	if err := validateSelection(sel); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, true, func(tx *gorm.DB, cart *models.Cart) error {
		if cart.FindLine(sel.Key()) >= 0 {
			return apperrors.ErrDuplicateCartItem
		}
		item := models.NewCartItem(cart.ID, sel)
		return tx.Create(&item).Error
	})
}

// AddItemMerge appends a new line or adds the selection's quantity to the existing one.
func (s *cartService) AddItemMerge(ctx context.Context, userID string, sel models.CartSelection) (*CartView, error) {
	if err := validateSelection(sel); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, true, func(tx *gorm.DB, cart *models.Cart) error {
		item := models.NewCartItem(cart.ID, sel)
		idx := cart.FindLine(sel.Key())
		if idx < 0 {
			return tx.Create(&item).Error
		}
		existing := cart.Items[idx]
		return tx.Model(&models.CartItem{}).
			Where("id = ?", existing.ID).
			Update("quantity", existing.Quantity+item.Quantity).Error
	})
}

// UpdateQuantity sets the quantity of one line.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, apperrors.ErrInvalidQuantity
	}
	view, err := s.mutate(ctx, userID, false, func(tx *gorm.DB, cart *models.Cart) error {
		if cart.FindItem(itemID) < 0 {
			return apperrors.ErrCartItemNotFound
		}
		return tx.Model(&models.CartItem{}).
			Where("id = ? AND cart_id = ?", itemID, cart.ID).
			Update("quantity", quantity).Error
	})
	if isNoCart(err) {
		return nil, apperrors.ErrCartItemNotFound
	}
	return view, err
}

// RemoveItem deletes one line.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID string) (*CartView, error) {
	view, err := s.mutate(ctx, userID, false, func(tx *gorm.DB, cart *models.Cart) error {
		if cart.FindItem(itemID) < 0 {
			return apperrors.ErrCartItemNotFound
		}
		return tx.Unscoped().
			Where("id = ? AND cart_id = ?", itemID, cart.ID).
			Delete(&models.CartItem{}).Error
	})
	if isNoCart(err) {
		return nil, apperrors.ErrCartItemNotFound
	}
	return view, err
}

// Clear empties the cart. A user without a cart gets an empty view and no cart is created.
func (s *cartService) Clear(ctx context.Context, userID string) (*CartView, error) {
	view, err := s.mutate(ctx, userID, false, func(tx *gorm.DB, cart *models.Cart) error {
		return clearCartItems(tx, cart)
	})
	if isNoCart(err) {
		return newCartView(nil), nil
	}
	return view, err
}

// Count returns the number of units in the user's cart.
func (s *cartService) Count(ctx context.Context, userID string) (int, error) {
	var total struct{ Units int }
	err := s.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Select("COALESCE(SUM(cart_items.quantity), 0) AS units").
		Joins("JOIN carts ON carts.id = cart_items.cart_id AND carts.deleted_at IS NULL").
		Where("carts.user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return total.Units, nil
}

// ContainsItem reports whether the cart holds a line with the given key.
func (s *cartService) ContainsItem(ctx context.Context, userID string, key models.LineKey) (bool, error) {
	view, err := s.GetCart(ctx, userID)
	if err != nil {
		return false, err
	}
	return view.Cart.FindLine(key) >= 0, nil
}

// isNoCart reports whether err came from mutate finding no cart.
func isNoCart(err error) bool {
	return errors.Is(err, errNoCart)
}
