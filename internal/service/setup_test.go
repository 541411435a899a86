package service

import (
	"fmt"
	"testing"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database and migrates the full
// schema. The shared-cache DSN keeps every pooled connection on the
// same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentTransaction{},
		&model.Review{},
		&model.Message{},
		&model.SupplierLocation{},
	))
	return db
}

func newTestHub() *ws.Hub {
	hub := ws.NewHub()
	go hub.Run()
	return hub
}

func createTestUser(t *testing.T, db *gorm.DB, role model.Role) *model.User {
	t.Helper()

	user := &model.User{
		FullName: string(role) + " User",
		Email:    fmt.Sprintf("%s@test.local", uuid.New().String()),
		Role:     role,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, farmerID uuid.UUID, price string, quantity int) *model.Product {
	t.Helper()

	product := &model.Product{
		FarmerID: farmerID,
		Name:     "Test Crop",
		Category: "Vegetables",
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
		Unit:     "kg",
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
