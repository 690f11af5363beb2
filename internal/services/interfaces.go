package services

import (
	"context"

	"github.com/shopspring/decimal"

	"royalfootwear/internal/models"
	"royalfootwear/internal/pagination"
)

// ProfileUpdate holds the optional fields a user may change on their profile.
type ProfileUpdate struct {
	Name                   *string
	Avatar                 *string
	Address                *models.Address
	NewsletterSubscription *bool
}

// UserServicer defines the contract for account and authentication logic.
type UserServicer interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ListUsers(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	SetUserActive(ctx context.Context, userID string, active bool) (*models.User, error)
}

// Product sort orders accepted by ListProducts.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
)

// ProductFilter holds optional catalog filters.
type ProductFilter struct {
	Category   *models.ProductCategory
	Brand      string
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Featured   *bool
	Discounted bool
	// InStock keeps products with (true) or without (false) any size in stock.
	InStock *bool
	Sort    string
}

// ProductInput is the admin-supplied content of a product.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	DiscountPrice decimal.NullDecimal
	Category      models.ProductCategory
	Brand         string
	Featured      bool
	Sizes         []models.SizeOption
	Colors        []models.ColorOption
}

// ProductServicer defines the contract for catalog logic.
type ProductServicer interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error)
	ListBrands(ctx context.Context) ([]string, error)
	AvailableSizes(ctx context.Context, id string) ([]int, error)
	CheckStock(ctx context.Context, productID string, size, quantity int) (bool, error)
	SelectForCart(ctx context.Context, productID string, size int, colorName string, quantity int) (models.CartSelection, error)
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// CartView is a cart together with its derived totals.
type CartView struct {
	Cart   *models.Cart      `json:"cart"`
	Totals models.CartTotals `json:"totals"`
}

// CartServicer defines the contract for the cart aggregate.
// Every mutation is serialized per user and returns the refreshed totals.
type CartServicer interface {
	GetCart(ctx context.Context, userID string) (*CartView, error)
	// AddItemStrict rejects a selection whose (product, size, color) line already exists.
	AddItemStrict(ctx context.Context, userID string, sel models.CartSelection) (*CartView, error)
	// AddItemMerge adds the selection's quantity to an existing line instead.
	AddItemMerge(ctx context.Context, userID string, sel models.CartSelection) (*CartView, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*CartView, error)
	Clear(ctx context.Context, userID string) (*CartView, error)
	// Count returns the number of units in the cart, 0 when the user has no cart.
	Count(ctx context.Context, userID string) (int, error)
	ContainsItem(ctx context.Context, userID string, key models.LineKey) (bool, error)
}

// WishlistView is a wishlist together with its summary.
type WishlistView struct {
	Wishlist *models.Wishlist       `json:"wishlist"`
	Summary  models.WishlistSummary `json:"summary"`
}

// WishlistServicer defines the contract for the wishlist aggregate.
type WishlistServicer interface {
	GetWishlist(ctx context.Context, userID string) (*WishlistView, error)
	AddItem(ctx context.Context, userID, productID string) (*WishlistView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*WishlistView, error)
	// MoveToCart removes the product from the wishlist and returns the cart
	// selection built from its snapshot. The caller inserts it into the cart.
	MoveToCart(ctx context.Context, userID, productID string, size int, colorName string, quantity int) (models.CartSelection, error)
	// MoveItemToCart runs MoveToCart and the strict cart insert, restoring the
	// wishlist entry if the insert fails.
	MoveItemToCart(ctx context.Context, userID, productID string, size int, colorName string, quantity int) (*CartView, error)
	// MoveCartItemToWishlist saves a cart line's product to the wishlist, then removes the line.
	MoveCartItemToWishlist(ctx context.Context, userID, itemID string) (*CartView, error)
	Contains(ctx context.Context, userID, productID string) (bool, error)
	Count(ctx context.Context, userID string) (int, error)
	Clear(ctx context.Context, userID string) (*WishlistView, error)
}

// OrderFilter holds optional admin order filters.
type OrderFilter struct {
	Status *models.OrderStatus
	UserID string
}

// OrderServicer defines the contract for order placement and fulfillment.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, userID string, method models.PaymentMethod, notes string) (*models.Order, error)
	GetUserOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error)
	ListOrders(ctx context.Context, filter OrderFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) (*models.Order, error)
	SetTrackingNumber(ctx context.Context, orderID, trackingNumber string) (*models.Order, error)
}

// AuditEvent describes one audited action.
type AuditEvent struct {
	UserID       string
	Action       string
	ResourceType models.AuditResource
	ResourceID   string
	IPAddress    string
	Changes      map[string]any
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	// Log records an event. Failures are logged and never returned.
	Log(ctx context.Context, event AuditEvent)
	History(ctx context.Context, resourceType models.AuditResource, resourceID string) ([]models.AuditLog, error)
}
