// internal/services/inventory_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
)

type InventoryServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	inventory *InventoryService
}

func (suite *InventoryServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.inventory = NewInventoryService(suite.db)
}

func (suite *InventoryServiceTestSuite) TestReserveDecrements() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)

	suite.Require().NoError(suite.inventory.Reserve(suite.db, product.ID, 4))
	suite.Equal(6, productQty(suite.T(), suite.db, product.ID))

	// Reserving exactly the remainder drains the row to zero.
	suite.Require().NoError(suite.inventory.Reserve(suite.db, product.ID, 6))
	suite.Equal(0, productQty(suite.T(), suite.db, product.ID))
}

func (suite *InventoryServiceTestSuite) TestReserveClassifiesFailures() {
	active := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 2)
	retired := seedProduct(suite.T(), suite.db, "Retired", 5.00, 0, 50)
	suite.Require().NoError(suite.db.Model(retired).Update("status", models.ProductStatusInactive).Error)

	err := suite.inventory.Reserve(suite.db, active.ID, 3)
	suite.True(errors.Is(err, ErrInsufficientStock))

	err = suite.inventory.Reserve(suite.db, retired.ID, 1)
	suite.True(errors.Is(err, ErrProductInactive))

	err = suite.inventory.Reserve(suite.db, 999, 1)
	suite.True(errors.Is(err, ErrProductNotFound))

	err = suite.inventory.Reserve(suite.db, active.ID, 0)
	suite.True(errors.Is(err, ErrInsufficientStock))

	// No failed path may have moved stock.
	suite.Equal(2, productQty(suite.T(), suite.db, active.ID))
	suite.Equal(50, productQty(suite.T(), suite.db, retired.ID))
}

func (suite *InventoryServiceTestSuite) TestReleaseIncrements() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 3)

	suite.Require().NoError(suite.inventory.Release(suite.db, product.ID, 5))
	suite.Equal(8, productQty(suite.T(), suite.db, product.ID))
}

func (suite *InventoryServiceTestSuite) TestReleaseRestoresInactiveProduct() {
	product := seedProduct(suite.T(), suite.db, "Retired", 5.00, 0, 3)
	suite.Require().NoError(suite.db.Model(product).Update("status", models.ProductStatusInactive).Error)

	suite.Require().NoError(suite.inventory.Release(suite.db, product.ID, 2))
	suite.Equal(5, productQty(suite.T(), suite.db, product.ID))
}

func (suite *InventoryServiceTestSuite) TestReleaseUnknownProduct() {
	err := suite.inventory.Release(suite.db, 999, 1)
	suite.True(errors.Is(err, ErrProductNotFound))
}

func TestInventoryServiceSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}
