// internal/services/billing_service_test.go
package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
)

type BillingServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	billing *BillingService
	trust   *TrustService
}

func (suite *BillingServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	inventory := NewInventoryService(suite.db)
	suite.trust = NewTrustService(suite.db)
	suite.billing = NewBillingService(suite.db, inventory, suite.trust, nil)
}

func (suite *BillingServiceTestSuite) TestCreateBillComputesTotals() {
	product := seedProduct(suite.T(), suite.db, "Widget", 10.00, 10.0, 50)

	bill, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Walk In",
		Items: []BillItemRequest{
			{ProductID: product.ID, Quantity: 2},
		},
	})
	suite.Require().NoError(err)

	suite.Equal(20.00, bill.TotalAmount)
	suite.Equal(2.00, bill.TotalTax)
	suite.Equal(22.00, bill.GrandTotal)
	suite.Require().Len(bill.Items, 1)
	suite.Equal("Widget", bill.Items[0].ProductName)
	suite.Equal(10.00, bill.Items[0].UnitPrice)
	suite.Equal(20.00, bill.Items[0].TotalPrice)
}

func (suite *BillingServiceTestSuite) TestCreateBillRoundsFractionalTax() {
	// 3 x 19.99 = 59.97, tax 8.25% = 4.947525 -> 4.95
	product := seedProduct(suite.T(), suite.db, "Notebook", 19.99, 8.25, 10)

	bill, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Walk In",
		Items: []BillItemRequest{
			{ProductID: product.ID, Quantity: 3},
		},
	})
	suite.Require().NoError(err)

	suite.Equal(59.97, bill.TotalAmount)
	suite.Equal(4.95, bill.TotalTax)
	suite.Equal(64.92, bill.GrandTotal)
}

func (suite *BillingServiceTestSuite) TestTransactionIDsAreSequential() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 100)

	for _, want := range []string{"TID0001", "TID0002", "TID0003"} {
		bill, err := suite.billing.CreateBill(nil, &CreateBillRequest{
			CustomerName: "Walk In",
			Items: []BillItemRequest{
				{ProductID: product.ID, Quantity: 1},
			},
		})
		suite.Require().NoError(err)
		suite.Equal(want, bill.TransactionID)
	}
}

func (suite *BillingServiceTestSuite) TestCreateBillDecrementsStock() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)

	_, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Walk In",
		Items: []BillItemRequest{
			{ProductID: product.ID, Quantity: 4},
		},
	})
	suite.Require().NoError(err)

	suite.Equal(6, productQty(suite.T(), suite.db, product.ID))
}

func (suite *BillingServiceTestSuite) TestInsufficientStockRollsEverythingBack() {
	ok := seedProduct(suite.T(), suite.db, "Plenty", 5.00, 0, 100)
	scarce := seedProduct(suite.T(), suite.db, "Scarce", 5.00, 0, 1)

	_, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Walk In",
		Items: []BillItemRequest{
			{ProductID: ok.ID, Quantity: 3},
			{ProductID: scarce.ID, Quantity: 2},
		},
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrInsufficientStock))

	// The first line's decrement must be rolled back with the bill.
	suite.Equal(100, productQty(suite.T(), suite.db, ok.ID))
	suite.Equal(1, productQty(suite.T(), suite.db, scarce.ID))

	var billCount, itemCount int64
	suite.db.Model(&models.Bill{}).Count(&billCount)
	suite.db.Model(&models.BillItem{}).Count(&itemCount)
	suite.Equal(int64(0), billCount)
	suite.Equal(int64(0), itemCount)

	// The rolled-back sale must not burn a transaction id.
	bill, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Walk In",
		Items: []BillItemRequest{
			{ProductID: ok.ID, Quantity: 1},
		},
	})
	suite.Require().NoError(err)
	suite.Equal("TID0001", bill.TransactionID)
}

func (suite *BillingServiceTestSuite) TestInactiveProductRejected() {
	product := seedProduct(suite.T(), suite.db, "Retired", 5.00, 0, 10)
	suite.Require().NoError(suite.db.Model(product).Update("status", models.ProductStatusInactive).Error)

	_, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Walk In",
		Items: []BillItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrProductInactive))
	suite.Equal(10, productQty(suite.T(), suite.db, product.ID))
}

func (suite *BillingServiceTestSuite) TestUnknownProductRejected() {
	_, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Walk In",
		Items: []BillItemRequest{
			{ProductID: 999, Quantity: 1},
		},
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrProductNotFound))
}

func (suite *BillingServiceTestSuite) TestCreateBillValidatesRequest() {
	_, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "",
		Items:        nil,
	})
	suite.Require().Error(err)
}

func (suite *BillingServiceTestSuite) TestCreateBillStampsKnownCustomer() {
	customer := seedCustomer(suite.T(), suite.db, "Jane Smith", "jane@example.com")
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)

	bill, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Jane Smith",
		Items: []BillItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(bill.CustomerID)
	suite.Equal(customer.ID, *bill.CustomerID)
}

func (suite *BillingServiceTestSuite) TestCreateBillUnknownCustomerStaysUnlinked() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)

	bill, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Stranger",
		Items: []BillItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
	})
	suite.Require().NoError(err)
	suite.Nil(bill.CustomerID)
}

func (suite *BillingServiceTestSuite) TestConcurrentSalesNeverOversell() {
	// Stock covers exactly one of the two concurrent sales.
	product := seedProduct(suite.T(), suite.db, "Last One", 5.00, 0, 3)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.billing.CreateBill(nil, &CreateBillRequest{
				CustomerName: "Walk In",
				Items: []BillItemRequest{
					{ProductID: product.ID, Quantity: 3},
				},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, stockFailures int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInsufficientStock):
			stockFailures++
		default:
			suite.Failf("unexpected error", "%v", err)
		}
	}

	suite.Equal(1, successes)
	suite.Equal(1, stockFailures)
	suite.Equal(0, productQty(suite.T(), suite.db, product.ID))
}

func (suite *BillingServiceTestSuite) TestFindByTransactionIDNormalizesInput() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)

	created, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: "Walk In",
		Items: []BillItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
	})
	suite.Require().NoError(err)
	suite.Equal("TID0001", created.TransactionID)

	for _, input := range []string{"TID0001", "tid0001", "0001", "  TID0001  "} {
		bill, err := suite.billing.FindByTransactionID(input)
		suite.Require().NoError(err, "input %q", input)
		suite.Equal(created.ID, bill.ID)
	}

	_, err = suite.billing.FindByTransactionID("9999")
	suite.True(errors.Is(err, ErrBillNotFound))

	_, err = suite.billing.FindByTransactionID("   ")
	suite.True(errors.Is(err, ErrBillNotFound))
}

func TestBillingServiceSuite(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}
