package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"royalfootwear/internal/clock"
	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/lock"
	"royalfootwear/internal/logger"
	"royalfootwear/internal/metrics"
	"royalfootwear/internal/models"
)

var errNoWishlist = errors.New("wishlist does not exist")

// wishlistService handles the wishlist aggregate and its hand-off to the cart.
type wishlistService struct {
	db       *gorm.DB
	guard    guard
	products ProductServicer
	carts    CartServicer
	clock    clock.Clock
}

// NewWishlistService creates a new WishlistServicer.
func NewWishlistService(db *gorm.DB, locker lock.Locker, products ProductServicer, carts CartServicer, clk clock.Clock, m *metrics.Metrics) WishlistServicer {
	if clk == nil {
		clk = clock.Real{}
	}
	return &wishlistService{
		db:       db,
		guard:    newGuard(locker, m),
		products: products,
		carts:    carts,
		clock:    clk,
	}
}

func loadWishlist(tx *gorm.DB, userID string) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("added_at ASC, id ASC")
	}).Where("user_id = ?", userID).First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func newWishlistView(w *models.Wishlist) *WishlistView {
	if w == nil {
		w = &models.Wishlist{}
	}
	if w.Items == nil {
		w.Items = []models.WishlistItem{}
	}
	return &WishlistView{Wishlist: w, Summary: w.Summary()}
}

// mutate runs fn on the user's wishlist inside the guarded read-modify-write cycle.
func (s *wishlistService) mutate(ctx context.Context, userID string, create bool, fn func(tx *gorm.DB, w *models.Wishlist) error) (*WishlistView, error) {
	var view *WishlistView
	err := s.guard.run(ctx, lock.Keys.Wishlist(userID), "wishlist", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			w, err := loadWishlist(tx, userID)
			if err != nil {
				return err
			}
			if w == nil {
				if !create {
					return errNoWishlist
				}
				w = &models.Wishlist{Aggregate: models.Aggregate{UserID: userID}}
				if err := createRoot(tx, w); err != nil {
					return err
				}
			}

			if err := fn(tx, w); err != nil {
				return err
			}
			if err := bumpVersion(tx, &models.Wishlist{}, w.ID, w.Version); err != nil {
				return err
			}

			refreshed, err := loadWishlist(tx, userID)
			if err != nil {
				return err
			}
			view = newWishlistView(refreshed)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetWishlist returns the user's wishlist, or an empty view. It never creates a wishlist.
func (s *wishlistService) GetWishlist(ctx context.Context, userID string) (*WishlistView, error) {
	w, err := loadWishlist(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return newWishlistView(w), nil
}

// AddItem snapshots a catalog product into the wishlist.
func (s *wishlistService) AddItem(ctx context.Context, userID, productID string) (*WishlistView, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.addSnapshot(ctx, userID, func(wishlistID string) models.WishlistItem {
		return models.NewWishlistItem(wishlistID, product, s.clock.Now())
	}, productID)
}

func (s *wishlistService) addSnapshot(ctx context.Context, userID string, build func(wishlistID string) models.WishlistItem, productID string) (*WishlistView, error) {
	return s.mutate(ctx, userID, true, func(tx *gorm.DB, w *models.Wishlist) error {
		if w.FindItem(productID) >= 0 {
			return apperrors.ErrAlreadyInWishlist
		}
		item := build(w.ID)
		return tx.Create(&item).Error
	})
}

// RemoveItem deletes a product from the wishlist.
func (s *wishlistService) RemoveItem(ctx context.Context, userID, productID string) (*WishlistView, error) {
	view, err := s.mutate(ctx, userID, false, func(tx *gorm.DB, w *models.Wishlist) error {
		return removeWishlistItem(tx, w, productID)
	})
	if errors.Is(err, errNoWishlist) {
		return nil, apperrors.ErrWishlistNotFound
	}
	return view, err
}

func removeWishlistItem(tx *gorm.DB, w *models.Wishlist, productID string) error {
	if w.FindItem(productID) < 0 {
		return apperrors.ErrWishlistItemNotFound
	}
	return tx.Unscoped().
		Where("wishlist_id = ? AND product_id = ?", w.ID, productID).
		Delete(&models.WishlistItem{}).Error
}

// MoveToCart removes the product from the wishlist and returns the cart
// selection built from its snapshot with the caller's size, color and quantity.
func (s *wishlistService) MoveToCart(ctx context.Context, userID, productID string, size int, colorName string, quantity int) (models.CartSelection, error) {
	_, sel, err := s.takeItem(ctx, userID, productID, size, colorName, quantity)
	return sel, err
}

// takeItem is MoveToCart that also returns the removed snapshot so it can be restored.
func (s *wishlistService) takeItem(ctx context.Context, userID, productID string, size int, colorName string, quantity int) (models.WishlistItem, models.CartSelection, error) {
	var (
		removed models.WishlistItem
		sel     models.CartSelection
	)
	_, err := s.mutate(ctx, userID, false, func(tx *gorm.DB, w *models.Wishlist) error {
		idx := w.FindItem(productID)
		if idx < 0 {
			return apperrors.ErrWishlistItemNotFound
		}
		removed = w.Items[idx]
		sel = removed.ToCartSelection(size, colorName, quantity)
		return removeWishlistItem(tx, w, productID)
	})
	if errors.Is(err, errNoWishlist) {
		return removed, sel, apperrors.ErrWishlistNotFound
	}
	return removed, sel, err
}

// MoveItemToCart moves a wishlist entry into the cart with the strict add.
// The size and color are checked against the catalog before the entry is
// taken. If the cart insert fails the entry is put back, so the product is
// never lost.
func (s *wishlistService) MoveItemToCart(ctx context.Context, userID, productID string, size int, colorName string, quantity int) (*CartView, error) {
	if size <= 0 || colorName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "size and color are required")
	}
	if _, err := s.products.SelectForCart(ctx, productID, size, colorName, quantity); err != nil {
		return nil, err
	}

	removed, sel, err := s.takeItem(ctx, userID, productID, size, colorName, quantity)
	if err != nil {
		return nil, err
	}

	view, cartErr := s.carts.AddItemStrict(ctx, userID, sel)
	if cartErr == nil {
		return view, nil
	}

	restoreCtx := context.WithoutCancel(ctx)
	_, restoreErr := s.addSnapshot(restoreCtx, userID, func(wishlistID string) models.WishlistItem {
		restored := removed
		restored.ID = ""
		restored.WishlistID = wishlistID
		return restored
	}, productID)
	if restoreErr != nil && !errors.Is(restoreErr, apperrors.ErrAlreadyInWishlist) {
		logger.For("wishlist").Errorw("failed to restore wishlist item after cart insert failed",
			"user_id", userID, "product_id", productID, "cart_error", cartErr, "error", restoreErr)
	}
	return nil, cartErr
}

// MoveCartItemToWishlist saves a cart line's product to the wishlist and then
// removes the line. A product already on the wishlist is not duplicated.
func (s *wishlistService) MoveCartItemToWishlist(ctx context.Context, userID, itemID string) (*CartView, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := cart.Cart.FindItem(itemID)
	if idx < 0 {
		return nil, apperrors.ErrCartItemNotFound
	}
	line := cart.Cart.Items[idx]

	if _, err := s.AddItem(ctx, userID, line.ProductID); err != nil && !errors.Is(err, apperrors.ErrAlreadyInWishlist) {
		return nil, err
	}
	return s.carts.RemoveItem(ctx, userID, itemID)
}

// Contains reports whether a product is on the wishlist.
func (s *wishlistService) Contains(ctx context.Context, userID, productID string) (bool, error) {
	view, err := s.GetWishlist(ctx, userID)
	if err != nil {
		return false, err
	}
	return view.Wishlist.FindItem(productID) >= 0, nil
}

// Count returns the number of products on the wishlist, 0 when the user has none.
func (s *wishlistService) Count(ctx context.Context, userID string) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Joins("JOIN wishlists ON wishlists.id = wishlist_items.wishlist_id AND wishlists.deleted_at IS NULL").
		Where("wishlists.user_id = ?", userID).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return int(n), nil
}

// Clear empties the wishlist.
func (s *wishlistService) Clear(ctx context.Context, userID string) (*WishlistView, error) {
	view, err := s.mutate(ctx, userID, false, func(tx *gorm.DB, w *models.Wishlist) error {
		return tx.Unscoped().Where("wishlist_id = ?", w.ID).Delete(&models.WishlistItem{}).Error
	})
	if errors.Is(err, errNoWishlist) {
		return newWishlistView(nil), nil
	}
	return view, err
}
