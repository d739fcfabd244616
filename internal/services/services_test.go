package services_test

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/database"
	"github.com/example/orchid/internal/models"
	"github.com/example/orchid/internal/testutil"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()
	user := models.User{
		FirstName:   "Test",
		LastName:    "User",
		Phone:       "+99890" + uuid.NewString()[:7],
		DisplayName: "Test User",
		Role:        role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, price float64, approved, returnable, replaceable bool) models.Product {
	t.Helper()
	product := models.Product{
		Slug:          "product-" + uuid.NewString(),
		Name:          "Test Product",
		BasePrice:     price,
		Currency:      "USD",
		IsApproved:    approved,
		IsReturnable:  returnable,
		IsReplaceable: replaceable,
		StockQuantity: 100,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedAddress(t *testing.T, db *gorm.DB, userID uuid.UUID, isDefault bool) models.UserAddress {
	t.Helper()
	address := models.UserAddress{
		UserID:      userID,
		Label:       "Home",
		FullName:    "Test User",
		Phone:       "+998901234567",
		AddressLine: "1 Example street",
		City:        "Tashkent",
		Country:     "Uzbekistan",
		IsDefault:   isDefault,
	}
	if err := db.Create(&address).Error; err != nil {
		t.Fatalf("seed address: %v", err)
	}
	return address
}

func seedBareOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, status string) models.Order {
	t.Helper()
	order := models.Order{
		UserID:      userID,
		OrderNumber: "#" + uuid.NewString()[:9],
		Status:      status,
		Subtotal:    100,
		Total:       100,
		Currency:    "USD",
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func countDefaults(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.UserAddress{}).
		Where("user_id = ? AND is_default = true", userID).
		Count(&count).Error; err != nil {
		t.Fatalf("count defaults: %v", err)
	}
	return count
}
