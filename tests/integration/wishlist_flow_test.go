package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWishlistFlow_AddMoveAndRestore(t *testing.T) {
	app := setupApp(t)
	admin := app.adminToken(t)
	productID := app.createProduct(t, admin, "Brogue", "75")
	customer, _, _ := app.registerUser(t, "wish@test.com", "password123")

	addBody := fmt.Sprintf(`{"product_id":%q}`, productID)
	expectStatus(t, app.request(http.MethodPost, "/api/v1/wishlist/items", addBody, customer), http.StatusCreated)

	result := expectStatus(t, app.request(http.MethodPost, "/api/v1/wishlist/items", addBody, customer), http.StatusConflict)
	if code := errorCode(t, result); code != "ALREADY_IN_WISHLIST" {
		t.Fatalf("expected ALREADY_IN_WISHLIST, got %s", code)
	}

	check := expectStatus(t, app.request(http.MethodGet, "/api/v1/wishlist/check/"+productID, "", customer), http.StatusOK)
	if check["in_wishlist"] != true {
		t.Fatalf("expected product in wishlist, got %v", check)
	}

	// Move it to the cart.
	moveBody := `{"size":42,"color_name":"Brown","quantity":1}`
	movePath := "/api/v1/wishlist/items/" + productID + "/move-to-cart"
	cart := expectStatus(t, app.request(http.MethodPost, movePath, moveBody, customer), http.StatusOK)
	if n := len(cart["cart"].(map[string]any)["items"].([]any)); n != 1 {
		t.Fatalf("expected 1 cart line after move, got %d", n)
	}
	count := expectStatus(t, app.request(http.MethodGet, "/api/v1/wishlist/count", "", customer), http.StatusOK)
	if count["count"] != float64(0) {
		t.Fatalf("expected empty wishlist after move, got %v", count["count"])
	}

	// Moving the same variant again collides with the cart line; the wishlist keeps the product.
	expectStatus(t, app.request(http.MethodPost, "/api/v1/wishlist/items", addBody, customer), http.StatusCreated)
	result = expectStatus(t, app.request(http.MethodPost, movePath, moveBody, customer), http.StatusConflict)
	if code := errorCode(t, result); code != "DUPLICATE_CART_ITEM" {
		t.Fatalf("expected DUPLICATE_CART_ITEM, got %s", code)
	}
	check = expectStatus(t, app.request(http.MethodGet, "/api/v1/wishlist/check/"+productID, "", customer), http.StatusOK)
	if check["in_wishlist"] != true {
		t.Error("expected wishlist entry to be restored after failed move")
	}
}

func TestWishlistFlow_MoveFromCart(t *testing.T) {
	app := setupApp(t)
	admin := app.adminToken(t)
	productID := app.createProduct(t, admin, "Slipper", "30")
	customer, _, _ := app.registerUser(t, "fromcart@test.com", "password123")

	added := expectStatus(t, app.addToCart(t, customer, productID, 42, "Brown", 1), http.StatusCreated)
	itemID := added["cart"].(map[string]any)["items"].([]any)[0].(map[string]any)["id"].(string)

	cart := expectStatus(t, app.request(http.MethodPost, "/api/v1/wishlist/from-cart/"+itemID, "", customer), http.StatusOK)
	if n := len(cart["cart"].(map[string]any)["items"].([]any)); n != 0 {
		t.Errorf("expected cart line removed, %d left", n)
	}

	wishlist := expectStatus(t, app.request(http.MethodGet, "/api/v1/wishlist", "", customer), http.StatusOK)
	items := wishlist["wishlist"].(map[string]any)["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["product_id"] != productID {
		t.Fatalf("expected product on wishlist, got %v", items)
	}
	summary := wishlist["summary"].(map[string]any)
	expectMoney(t, "wishlist total", summary["total_value"], "30")
}

func TestWishlistFlow_RemoveAndClear(t *testing.T) {
	app := setupApp(t)
	admin := app.adminToken(t)
	first := app.createProduct(t, admin, "Runner", "40")
	second := app.createProduct(t, admin, "Trail", "45")
	customer, _, _ := app.registerUser(t, "clear@test.com", "password123")

	// Removing from a wishlist that was never created.
	result := expectStatus(t, app.request(http.MethodDelete, "/api/v1/wishlist/items/"+first, "", customer), http.StatusNotFound)
	if code := errorCode(t, result); code != "WISHLIST_NOT_FOUND" {
		t.Errorf("expected WISHLIST_NOT_FOUND, got %s", code)
	}

	for _, id := range []string{first, second} {
		expectStatus(t, app.request(http.MethodPost, "/api/v1/wishlist/items", fmt.Sprintf(`{"product_id":%q}`, id), customer), http.StatusCreated)
	}
	expectStatus(t, app.request(http.MethodDelete, "/api/v1/wishlist/items/"+first, "", customer), http.StatusOK)

	result = expectStatus(t, app.request(http.MethodDelete, "/api/v1/wishlist/items/"+first, "", customer), http.StatusNotFound)
	if code := errorCode(t, result); code != "WISHLIST_ITEM_NOT_FOUND" {
		t.Errorf("expected WISHLIST_ITEM_NOT_FOUND, got %s", code)
	}

	cleared := expectStatus(t, app.request(http.MethodDelete, "/api/v1/wishlist", "", customer), http.StatusOK)
	if n := len(cleared["wishlist"].(map[string]any)["items"].([]any)); n != 0 {
		t.Errorf("expected empty wishlist, got %d items", n)
	}
}
