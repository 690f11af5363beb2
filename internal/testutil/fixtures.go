package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"royalfootwear/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a customer with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a customer with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return createUser(t, db, email, models.RoleCustomer)
}

// CreateTestAdmin creates an admin user.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, fmt.Sprintf("admin%d@test.com", nextID()), models.RoleAdmin)
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		Role:     role,
		IsActive: true,
		Address: models.Address{
			Street:  "1 Crown Street",
			City:    "Lahore",
			Country: "Pakistan",
			ZipCode: "54000",
			Phone:   "+920000000",
		},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// ProductOption customizes a fixture product before it is saved.
type ProductOption func(*models.Product)

// WithPrice sets the list price.
func WithPrice(price string) ProductOption {
	return func(p *models.Product) { p.Price = decimal.RequireFromString(price) }
}

// WithDiscount sets the discount price.
func WithDiscount(price string) ProductOption {
	return func(p *models.Product) {
		p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
}

// WithCategory sets the category.
func WithCategory(c models.ProductCategory) ProductOption {
	return func(p *models.Product) { p.Category = c }
}

// WithSizeStock sets the stock of a size, adding the size if needed.
func WithSizeStock(size, quantity int) ProductOption {
	return func(p *models.Product) {
		for i := range p.Sizes {
			if p.Sizes[i].Size == size {
				p.Sizes[i].Quantity = quantity
				return
			}
		}
		p.Sizes = append(p.Sizes, models.ProductSize{Size: size, Quantity: quantity})
	}
}

// SoldOut sets every size's stock to zero.
func SoldOut() ProductOption {
	return func(p *models.Product) {
		for i := range p.Sizes {
			p.Sizes[i].Quantity = 0
		}
	}
}

// CreateTestProduct creates a sneaker priced at 50 with sizes 40-44 in stock
// and two colors: "Black" with one image and "White" without images.
func CreateTestProduct(t *testing.T, db *gorm.DB, opts ...ProductOption) *models.Product {
	t.Helper()

	n := nextID()
	product := &models.Product{
		Name:     fmt.Sprintf("Test Shoe %d", n),
		Price:    decimal.NewFromInt(50),
		Category: models.CategorySneakers,
		Brand:    "Royal",
		Sizes: []models.ProductSize{
			{Size: 40, Quantity: 5}, {Size: 41, Quantity: 5}, {Size: 42, Quantity: 5},
			{Size: 43, Quantity: 5}, {Size: 44, Quantity: 5},
		},
		Colors: []models.ProductColor{
			{
				Name: "Black",
				Code: "#111111",
				Images: []models.ProductImage{{
					URL:       fmt.Sprintf("http://img.test/%d/black.jpg", n),
					SecureURL: fmt.Sprintf("https://img.test/%d/black.jpg", n),
				}},
			},
			{Name: "White", Code: "#FFFFFF"},
		},
	}
	for _, opt := range opts {
		opt(product)
	}

	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// Selection builds a cart selection for a fixture product.
func Selection(p *models.Product, size int, color string, quantity int) models.CartSelection {
	return models.NewCartSelection(p, size, color, quantity, models.DefaultImageURL)
}
