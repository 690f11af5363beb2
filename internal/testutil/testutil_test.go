package testutil_test

import (
	"testing"

	"royalfootwear/internal/errors"
	"royalfootwear/internal/models"
	"royalfootwear/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "products", "product_sizes", "product_colors", "product_images", "carts", "cart_items", "wishlists", "wishlist_items", "orders", "order_items", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	second := testutil.SetupTestDB(t)

	testutil.CreateTestUser(t, first)

	if n := testutil.CountRows(t, second, &models.User{}); n != 0 {
		t.Errorf("expected second database to be empty, found %d users", n)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}
	if user.Role != models.RoleCustomer {
		t.Errorf("expected customer role, got %s", user.Role)
	}

	admin := testutil.CreateTestAdmin(t, db)
	if !admin.IsAdmin() {
		t.Errorf("expected admin role, got %s", admin.Role)
	}

	product := testutil.CreateTestProduct(t, db, testutil.WithPrice("120"), testutil.WithDiscount("99.5"), testutil.WithSizeStock(45, 0))
	if product.Price.String() != "120" {
		t.Errorf("expected price 120, got %s", product.Price)
	}
	if !product.DiscountPrice.Valid {
		t.Error("expected discount price to be set")
	}
	if stock, ok := product.StockForSize(45); !ok || stock != 0 {
		t.Errorf("expected size 45 with no stock, got %d (exists=%v)", stock, ok)
	}

	var loaded models.Product
	if err := db.Preload("Colors.Images").Preload("Sizes").First(&loaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if len(loaded.Colors) != 2 || len(loaded.Sizes) != 6 {
		t.Errorf("expected 2 colors and 6 sizes, got %d and %d", len(loaded.Colors), len(loaded.Sizes))
	}

	sel := testutil.Selection(product, 42, "Black", 2)
	if sel.ProductID != product.ID || sel.Quantity != 2 {
		t.Errorf("unexpected selection %+v", sel)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrCartItemNotFound, "custom message")
	testutil.AssertAppError(t, err, "CART_ITEM_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
