package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"royalfootwear/internal/logger"
	"royalfootwear/internal/middleware"
	"royalfootwear/internal/models"
	"royalfootwear/internal/pagination"
	"royalfootwear/internal/services"
	"royalfootwear/internal/validator"
)

const (
	testUserID    = "0190f5a4-0000-7000-8000-0000000000aa"
	testProductID = "0190f5a4-0000-7000-8000-0000000000bb"
	testItemID    = "0190f5a4-0000-7000-8000-0000000000cc"
	testOrderID   = "0190f5a4-0000-7000-8000-0000000000dd"
)

// --- mock services ---

type mockUserService struct {
	registerFn              func(ctx context.Context, name, email, password string) (*models.User, error)
	getUserByIDFn           func(ctx context.Context, id string) (*models.User, error)
	attemptLoginFn          func(ctx context.Context, email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(ctx context.Context, userID, tokenHash string) error
	getRefreshTokenHashFn   func(ctx context.Context, userID string) (string, error)
	updateProfileFn         func(ctx context.Context, userID string, update services.ProfileUpdate) (*models.User, error)
	changePasswordFn        func(ctx context.Context, userID, current, next string) error
	setUserActiveFn         func(ctx context.Context, userID string, active bool) (*models.User, error)
}

func (m *mockUserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) CreateAdmin(_ context.Context, name, email, _ string) (*models.User, error) {
	return &models.User{Name: name, Email: email, Role: models.RoleAdmin}, nil
}

func (m *mockUserService) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return &models.User{Email: email}, nil
}

func (m *mockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, id)
	}
	u := &models.User{IsActive: true}
	u.ID = id
	return u, nil
}

func (m *mockUserService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(ctx, email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(ctx, userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(ctx context.Context, userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(ctx, userID)
	}
	return "", nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, update services.ProfileUpdate) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, update)
	}
	return &models.User{}, nil
}

func (m *mockUserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, userID, current, next)
	}
	return nil
}

func (m *mockUserService) ListUsers(_ context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	page.Defaults()
	resp := pagination.NewPageResponse[models.User](nil, page.Page, page.PageSize, 0)
	return &resp, nil
}

func (m *mockUserService) SetUserActive(ctx context.Context, userID string, active bool) (*models.User, error) {
	if m.setUserActiveFn != nil {
		return m.setUserActiveFn(ctx, userID, active)
	}
	return &models.User{IsActive: active}, nil
}

type mockProductService struct {
	getProductByIDFn func(ctx context.Context, id string) (*models.Product, error)
	listProductsFn   func(ctx context.Context, filter services.ProductFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error)
	checkStockFn     func(ctx context.Context, productID string, size, quantity int) (bool, error)
	selectForCartFn  func(ctx context.Context, productID string, size int, colorName string, quantity int) (models.CartSelection, error)
	createProductFn  func(ctx context.Context, in services.ProductInput) (*models.Product, error)
	deleteProductFn  func(ctx context.Context, id string) error
}

func (m *mockProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if m.getProductByIDFn != nil {
		return m.getProductByIDFn(ctx, id)
	}
	return &models.Product{}, nil
}

func (m *mockProductService) ListProducts(ctx context.Context, filter services.ProductFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx, filter, page)
	}
	page.Defaults()
	resp := pagination.NewPageResponse[models.Product](nil, page.Page, page.PageSize, 0)
	return &resp, nil
}

func (m *mockProductService) ListBrands(context.Context) ([]string, error) {
	return []string{"Royal"}, nil
}

func (m *mockProductService) AvailableSizes(context.Context, string) ([]int, error) {
	return []int{41, 42}, nil
}

func (m *mockProductService) CheckStock(ctx context.Context, productID string, size, quantity int) (bool, error) {
	if m.checkStockFn != nil {
		return m.checkStockFn(ctx, productID, size, quantity)
	}
	return true, nil
}

func (m *mockProductService) SelectForCart(ctx context.Context, productID string, size int, colorName string, quantity int) (models.CartSelection, error) {
	if m.selectForCartFn != nil {
		return m.selectForCartFn(ctx, productID, size, colorName, quantity)
	}
	return models.CartSelection{ProductID: productID, Size: size, ColorName: colorName, Quantity: quantity}, nil
}

func (m *mockProductService) CreateProduct(ctx context.Context, in services.ProductInput) (*models.Product, error) {
	if m.createProductFn != nil {
		return m.createProductFn(ctx, in)
	}
	p := &models.Product{Name: in.Name, Price: in.Price}
	p.ID = testProductID
	return p, nil
}

func (m *mockProductService) UpdateProduct(_ context.Context, id string, in services.ProductInput) (*models.Product, error) {
	p := &models.Product{Name: in.Name, Price: in.Price}
	p.ID = id
	return p, nil
}

func (m *mockProductService) DeleteProduct(ctx context.Context, id string) error {
	if m.deleteProductFn != nil {
		return m.deleteProductFn(ctx, id)
	}
	return nil
}

type mockCartService struct {
	addItemStrictFn  func(ctx context.Context, userID string, sel models.CartSelection) (*services.CartView, error)
	addItemMergeFn   func(ctx context.Context, userID string, sel models.CartSelection) (*services.CartView, error)
	updateQuantityFn func(ctx context.Context, userID, itemID string, quantity int) (*services.CartView, error)
	removeItemFn     func(ctx context.Context, userID, itemID string) (*services.CartView, error)
	countFn          func(ctx context.Context, userID string) (int, error)
	containsItemFn   func(ctx context.Context, userID string, key models.LineKey) (bool, error)
}

func emptyCartView() *services.CartView {
	cart := &models.Cart{Items: []models.CartItem{}}
	return &services.CartView{Cart: cart, Totals: cart.Totals()}
}

func (m *mockCartService) GetCart(context.Context, string) (*services.CartView, error) {
	return emptyCartView(), nil
}

func (m *mockCartService) AddItemStrict(ctx context.Context, userID string, sel models.CartSelection) (*services.CartView, error) {
	if m.addItemStrictFn != nil {
		return m.addItemStrictFn(ctx, userID, sel)
	}
	return emptyCartView(), nil
}

func (m *mockCartService) AddItemMerge(ctx context.Context, userID string, sel models.CartSelection) (*services.CartView, error) {
	if m.addItemMergeFn != nil {
		return m.addItemMergeFn(ctx, userID, sel)
	}
	return emptyCartView(), nil
}

func (m *mockCartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*services.CartView, error) {
	if m.updateQuantityFn != nil {
		return m.updateQuantityFn(ctx, userID, itemID, quantity)
	}
	return emptyCartView(), nil
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID, itemID string) (*services.CartView, error) {
	if m.removeItemFn != nil {
		return m.removeItemFn(ctx, userID, itemID)
	}
	return emptyCartView(), nil
}

func (m *mockCartService) Clear(context.Context, string) (*services.CartView, error) {
	return emptyCartView(), nil
}

func (m *mockCartService) Count(ctx context.Context, userID string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockCartService) ContainsItem(ctx context.Context, userID string, key models.LineKey) (bool, error) {
	if m.containsItemFn != nil {
		return m.containsItemFn(ctx, userID, key)
	}
	return false, nil
}

type mockWishlistService struct {
	addItemFn        func(ctx context.Context, userID, productID string) (*services.WishlistView, error)
	removeItemFn     func(ctx context.Context, userID, productID string) (*services.WishlistView, error)
	moveItemToCartFn func(ctx context.Context, userID, productID string, size int, colorName string, quantity int) (*services.CartView, error)
	moveFromCartFn   func(ctx context.Context, userID, itemID string) (*services.CartView, error)
}

func emptyWishlistView() *services.WishlistView {
	w := &models.Wishlist{Items: []models.WishlistItem{}}
	return &services.WishlistView{Wishlist: w, Summary: w.Summary()}
}

func (m *mockWishlistService) GetWishlist(context.Context, string) (*services.WishlistView, error) {
	return emptyWishlistView(), nil
}

func (m *mockWishlistService) AddItem(ctx context.Context, userID, productID string) (*services.WishlistView, error) {
	if m.addItemFn != nil {
		return m.addItemFn(ctx, userID, productID)
	}
	return emptyWishlistView(), nil
}

func (m *mockWishlistService) RemoveItem(ctx context.Context, userID, productID string) (*services.WishlistView, error) {
	if m.removeItemFn != nil {
		return m.removeItemFn(ctx, userID, productID)
	}
	return emptyWishlistView(), nil
}

func (m *mockWishlistService) MoveToCart(_ context.Context, _, productID string, size int, colorName string, quantity int) (models.CartSelection, error) {
	return models.CartSelection{ProductID: productID, Size: size, ColorName: colorName, Quantity: quantity}, nil
}

func (m *mockWishlistService) MoveItemToCart(ctx context.Context, userID, productID string, size int, colorName string, quantity int) (*services.CartView, error) {
	if m.moveItemToCartFn != nil {
		return m.moveItemToCartFn(ctx, userID, productID, size, colorName, quantity)
	}
	return emptyCartView(), nil
}

func (m *mockWishlistService) MoveCartItemToWishlist(ctx context.Context, userID, itemID string) (*services.CartView, error) {
	if m.moveFromCartFn != nil {
		return m.moveFromCartFn(ctx, userID, itemID)
	}
	return emptyCartView(), nil
}

func (m *mockWishlistService) Contains(context.Context, string, string) (bool, error) {
	return true, nil
}

func (m *mockWishlistService) Count(context.Context, string) (int, error) {
	return 0, nil
}

func (m *mockWishlistService) Clear(context.Context, string) (*services.WishlistView, error) {
	return emptyWishlistView(), nil
}

type mockOrderService struct {
	getOrderByIDFn      func(ctx context.Context, orderID string) (*models.Order, error)
	placeOrderFn        func(ctx context.Context, userID string, method models.PaymentMethod, notes string) (*models.Order, error)
	getUserOrderFn      func(ctx context.Context, userID, orderID string) (*models.Order, error)
	listOrdersFn        func(ctx context.Context, filter services.OrderFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error)
	updateOrderStatusFn func(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)
}

func testOrder() *models.Order {
	o := &models.Order{OrderStatus: models.OrderProcessing, PaymentStatus: models.PaymentPending, PaymentMethod: models.PaymentCreditCard}
	o.ID = testOrderID
	return o
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, userID string, method models.PaymentMethod, notes string) (*models.Order, error) {
	if m.placeOrderFn != nil {
		return m.placeOrderFn(ctx, userID, method, notes)
	}
	return testOrder(), nil
}

func (m *mockOrderService) GetUserOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	if m.getUserOrderFn != nil {
		return m.getUserOrderFn(ctx, userID, orderID)
	}
	return testOrder(), nil
}

func (m *mockOrderService) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	if m.getOrderByIDFn != nil {
		return m.getOrderByIDFn(ctx, orderID)
	}
	return testOrder(), nil
}

func (m *mockOrderService) ListUserOrders(_ context.Context, _ string, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error) {
	page.Defaults()
	resp := pagination.NewPageResponse([]models.Order{*testOrder()}, page.Page, page.PageSize, 1)
	return &resp, nil
}

func (m *mockOrderService) ListOrders(ctx context.Context, filter services.OrderFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, filter, page)
	}
	page.Defaults()
	resp := pagination.NewPageResponse[models.Order](nil, page.Page, page.PageSize, 0)
	return &resp, nil
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if m.updateOrderStatusFn != nil {
		return m.updateOrderStatusFn(ctx, orderID, status)
	}
	o := testOrder()
	o.OrderStatus = status
	return o, nil
}

func (m *mockOrderService) UpdatePaymentStatus(_ context.Context, _ string, status models.PaymentStatus) (*models.Order, error) {
	o := testOrder()
	o.PaymentStatus = status
	return o, nil
}

func (m *mockOrderService) SetTrackingNumber(_ context.Context, _ string, tracking string) (*models.Order, error) {
	o := testOrder()
	o.TrackingNumber = tracking
	return o, nil
}

// mockAuditService records the actions it is asked to log.
type mockAuditService struct {
	mu        sync.Mutex
	actions   []string
	historyFn func(ctx context.Context, resource models.AuditResource, id string) ([]models.AuditLog, error)
}

func (m *mockAuditService) Log(_ context.Context, event services.AuditEvent) {
	m.mu.Lock()
	m.actions = append(m.actions, event.Action)
	m.mu.Unlock()
}

func (m *mockAuditService) History(ctx context.Context, resource models.AuditResource, id string) ([]models.AuditLog, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, resource, id)
	}
	return []models.AuditLog{}, nil
}

func (m *mockAuditService) logged(action string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		if a == action {
			return true
		}
	}
	return false
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func injectUser(uid string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uid)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func doRequestWithHeader(r *gin.Engine, method, path, body, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(header, value)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]any, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
