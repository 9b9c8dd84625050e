// internal/services/testutil_test.go
package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopdesk/crm-backend/internal/config"
	"github.com/shopdesk/crm-backend/internal/database"
	"github.com/shopdesk/crm-backend/internal/models"
)

// newTestDB opens a fresh in-memory database with the full schema and the
// sequence counter bootstrapped. The pool is capped at a single connection so
// concurrent transactions in tests serialize instead of fighting over
// separate in-memory databases.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Billing: config.BillingConfig{
			LowStockThreshold: 5,
			StatsCacheTTL:     30,
		},
	}
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price, taxRate float64, qty int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Category: "Test",
		Price:    price,
		TaxRate:  taxRate,
		Qty:      qty,
		Status:   models.ProductStatusActive,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedCustomer(t *testing.T, db *gorm.DB, name, email string) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		Name:  name,
		Email: email,
		Phone: "555-0100",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func productQty(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, productID).Error)
	return product.Qty
}
