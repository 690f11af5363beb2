package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"royalfootwear/internal/clock"
	"royalfootwear/internal/handlers"
	"royalfootwear/internal/lock"
	"royalfootwear/internal/lockout"
	"royalfootwear/internal/logger"
	"royalfootwear/internal/models"
	"royalfootwear/internal/router"
	"royalfootwear/internal/services"
	"royalfootwear/internal/testutil"
	"royalfootwear/internal/validator"
)

const internalAPIKey = "integration-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Clock  *clock.Fixed
	Users  services.UserServicer
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	locker := lock.NewMemoryLocker()
	t.Cleanup(locker.Close)
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	// Services
	userService := services.NewUserService(db, locker, lockout.DefaultPolicy(), clk, nil)
	productService := services.NewProductService(db, "")
	cartService := services.NewCartService(db, locker, nil)
	wishlistService := services.NewWishlistService(db, locker, productService, cartService, clk, nil)
	orderService := services.NewOrderService(db, locker, models.DefaultPricingPolicy(), nil)
	auditService := services.NewAuditService(db)

	engine := router.New(router.Handlers{
		Auth:     handlers.NewAuthHandler(userService, auditService),
		Product:  handlers.NewProductHandler(productService),
		Cart:     handlers.NewCartHandler(cartService, productService),
		Wishlist: handlers.NewWishlistHandler(wishlistService),
		Order:    handlers.NewOrderHandler(orderService, auditService),
		Admin:    handlers.NewAdminHandler(productService, orderService, userService, auditService),
		Internal: handlers.NewInternalHandler(cartService, productService),
	}, router.Options{InternalAPIKey: internalAPIKey})

	return &testApp{DB: db, Clock: clk, Users: userService, Router: engine}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// requestWithAPIKey makes a request to an internal route.
func (app *testApp) requestWithAPIKey(method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// expectStatus fails the test when the response code differs from want.
func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) map[string]any {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

// errorCode extracts error.code from an error response.
func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

// money reads a decimal rendered as a JSON string.
func money(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T (%v)", v, v)
	}
	return decimal.RequireFromString(s)
}

func expectMoney(t *testing.T, field string, got any, want string) {
	t.Helper()
	if d := money(t, got); !d.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", field, want, d.String())
	}
}

// registerUser registers a new customer and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":%q}`, email, password)
	result := expectStatus(t, app.request(http.MethodPost, "/api/v1/auth/register", body, ""), http.StatusCreated)
	user := result["user"].(map[string]any)
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	result := expectStatus(t, app.request(http.MethodPost, "/api/v1/auth/login", body, ""), http.StatusOK)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// adminToken creates an admin account and logs it in.
func (app *testApp) adminToken(t *testing.T) string {
	t.Helper()
	email := fmt.Sprintf("admin-%d@royal.test", time.Now().UnixNano())
	if _, err := app.Users.CreateAdmin(t.Context(), "Admin", email, "adminpass"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	access, _ := app.loginUser(t, email, "adminpass")
	return access
}

// createProduct creates a catalog product through the admin API and returns its ID.
func (app *testApp) createProduct(t *testing.T, adminToken, name, price string) string {
	t.Helper()
	body := fmt.Sprintf(`{
		"name": %q,
		"description": "Hand-stitched leather",
		"price": %s,
		"category": "formal",
		"brand": "Royal",
		"sizes": [{"size": 42, "quantity": 10}, {"size": 43, "quantity": 0}],
		"colors": [{"name": "Brown", "code": "#8B4513", "images": [{"url": "http://img.test/brown.jpg"}]}]
	}`, name, price)
	result := expectStatus(t, app.request(http.MethodPost, "/api/v1/admin/products", body, adminToken), http.StatusCreated)
	return result["product"].(map[string]any)["id"].(string)
}

// addToCart adds a line through the customer cart API.
func (app *testApp) addToCart(t *testing.T, token, productID string, size int, color string, quantity int) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"product_id":%q,"size":%d,"color_name":%q,"quantity":%d}`, productID, size, color, quantity)
	return app.request(http.MethodPost, "/api/v1/cart/items", body, token)
}
