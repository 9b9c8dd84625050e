// internal/services/returns_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
)

type ReturnsServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	billing *BillingService
	returns *ReturnsService
	trust   *TrustService
}

func (suite *ReturnsServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	inventory := NewInventoryService(suite.db)
	suite.trust = NewTrustService(suite.db)
	suite.billing = NewBillingService(suite.db, inventory, suite.trust, nil)
	suite.returns = NewReturnsService(suite.db, inventory, suite.trust, nil)
}

func (suite *ReturnsServiceTestSuite) sell(customerName string, productID uint, qty int) *models.Bill {
	bill, err := suite.billing.CreateBill(nil, &CreateBillRequest{
		CustomerName: customerName,
		Items: []BillItemRequest{
			{ProductID: productID, Quantity: qty},
		},
	})
	suite.Require().NoError(err)
	return bill
}

func (suite *ReturnsServiceTestSuite) TestRequestReturnCopiesBillIdentifiers() {
	customer := seedCustomer(suite.T(), suite.db, "Jane Smith", "jane@example.com")
	product := seedProduct(suite.T(), suite.db, "Widget", 25.50, 0, 10)
	bill := suite.sell("Jane Smith", product.ID, 2)

	ret, err := suite.returns.RequestReturn(&RequestReturnRequest{
		BillID:    bill.ID,
		ProductID: product.ID,
		Quantity:  2,
		Reason:    "defective",
	})
	suite.Require().NoError(err)

	suite.Equal(bill.TransactionID, ret.TransactionID)
	suite.Equal("Jane Smith", ret.CustomerName)
	suite.Require().NotNil(ret.CustomerID)
	suite.Equal(customer.ID, *ret.CustomerID)
	suite.Equal("Widget", ret.ProductName)
	suite.Equal(25.50, ret.UnitPrice)
	suite.Equal(51.00, ret.TotalAmount)
	suite.Equal(models.ReturnStatusPending, ret.Status)

	// Filing a return never touches stock.
	suite.Equal(8, productQty(suite.T(), suite.db, product.ID))
}

func (suite *ReturnsServiceTestSuite) TestRequestReturnUnknownBill() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)

	_, err := suite.returns.RequestReturn(&RequestReturnRequest{
		BillID:    999,
		ProductID: product.ID,
		Quantity:  1,
		Reason:    "defective",
	})
	suite.True(errors.Is(err, ErrBillNotFound))
}

func (suite *ReturnsServiceTestSuite) TestRequestReturnValidation() {
	_, err := suite.returns.RequestReturn(&RequestReturnRequest{})
	suite.Require().Error(err)
}

func (suite *ReturnsServiceTestSuite) TestApproveValidReturnRestoresStock() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)
	bill := suite.sell("Walk In", product.ID, 3)
	suite.Equal(7, productQty(suite.T(), suite.db, product.ID))

	ret, err := suite.returns.RequestReturn(&RequestReturnRequest{
		BillID:    bill.ID,
		ProductID: product.ID,
		Quantity:  3,
		Reason:    "defective",
	})
	suite.Require().NoError(err)

	deciderID := uint(1)
	decided, err := suite.returns.Decide(ret.ID, &deciderID, &DecideReturnRequest{
		Approve: true,
		IsValid: true,
	})
	suite.Require().NoError(err)

	suite.Equal(models.ReturnStatusApproved, decided.Status)
	suite.True(decided.IsValid)
	suite.NotNil(decided.ApprovedAt)
	suite.Equal(10, productQty(suite.T(), suite.db, product.ID))
}

func (suite *ReturnsServiceTestSuite) TestApproveInvalidReturnKeepsStock() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)
	bill := suite.sell("Walk In", product.ID, 3)

	ret, err := suite.returns.RequestReturn(&RequestReturnRequest{
		BillID:    bill.ID,
		ProductID: product.ID,
		Quantity:  3,
		Reason:    "changed mind",
	})
	suite.Require().NoError(err)

	decided, err := suite.returns.Decide(ret.ID, nil, &DecideReturnRequest{
		Approve: true,
		IsValid: false,
	})
	suite.Require().NoError(err)

	suite.Equal(models.ReturnStatusApproved, decided.Status)
	suite.False(decided.IsValid)
	suite.Equal(7, productQty(suite.T(), suite.db, product.ID))
}

func (suite *ReturnsServiceTestSuite) TestRejectNeverTouchesStockOrValidity() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)
	bill := suite.sell("Walk In", product.ID, 3)

	ret, err := suite.returns.RequestReturn(&RequestReturnRequest{
		BillID:    bill.ID,
		ProductID: product.ID,
		Quantity:  3,
		Reason:    "suspicious",
	})
	suite.Require().NoError(err)

	// A rejection is invalid by definition, whatever the caller sent.
	decided, err := suite.returns.Decide(ret.ID, nil, &DecideReturnRequest{
		Approve: false,
		IsValid: true,
	})
	suite.Require().NoError(err)

	suite.Equal(models.ReturnStatusRejected, decided.Status)
	suite.False(decided.IsValid)
	suite.Equal(7, productQty(suite.T(), suite.db, product.ID))
}

func (suite *ReturnsServiceTestSuite) TestDecideIsTerminal() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 10)
	bill := suite.sell("Walk In", product.ID, 2)

	ret, err := suite.returns.RequestReturn(&RequestReturnRequest{
		BillID:    bill.ID,
		ProductID: product.ID,
		Quantity:  2,
		Reason:    "defective",
	})
	suite.Require().NoError(err)

	_, err = suite.returns.Decide(ret.ID, nil, &DecideReturnRequest{Approve: true, IsValid: true})
	suite.Require().NoError(err)
	suite.Equal(10, productQty(suite.T(), suite.db, product.ID))

	// A second approval must not double-release stock.
	_, err = suite.returns.Decide(ret.ID, nil, &DecideReturnRequest{Approve: true, IsValid: true})
	suite.True(errors.Is(err, ErrAlreadyDecided))
	suite.Equal(10, productQty(suite.T(), suite.db, product.ID))

	// Nor can a decision be flipped afterwards.
	_, err = suite.returns.Decide(ret.ID, nil, &DecideReturnRequest{Approve: false})
	suite.True(errors.Is(err, ErrAlreadyDecided))
}

func (suite *ReturnsServiceTestSuite) TestDecideUnknownReturn() {
	_, err := suite.returns.Decide(999, nil, &DecideReturnRequest{Approve: true})
	suite.True(errors.Is(err, ErrReturnNotFound))
}

func (suite *ReturnsServiceTestSuite) TestGetStats() {
	product := seedProduct(suite.T(), suite.db, "Widget", 5.00, 0, 100)
	bill := suite.sell("Walk In", product.ID, 10)

	file := func(reason string) *models.ReturnRequest {
		ret, err := suite.returns.RequestReturn(&RequestReturnRequest{
			BillID:    bill.ID,
			ProductID: product.ID,
			Quantity:  1,
			Reason:    reason,
		})
		suite.Require().NoError(err)
		return ret
	}

	approvedValid := file("defective")
	approvedInvalid := file("changed mind")
	rejected := file("suspicious")
	file("pending one")

	_, err := suite.returns.Decide(approvedValid.ID, nil, &DecideReturnRequest{Approve: true, IsValid: true})
	suite.Require().NoError(err)
	_, err = suite.returns.Decide(approvedInvalid.ID, nil, &DecideReturnRequest{Approve: true, IsValid: false})
	suite.Require().NoError(err)
	_, err = suite.returns.Decide(rejected.ID, nil, &DecideReturnRequest{Approve: false})
	suite.Require().NoError(err)

	stats, err := suite.returns.GetStats()
	suite.Require().NoError(err)

	suite.Equal(int64(4), stats.Total)
	suite.Equal(int64(1), stats.Pending)
	suite.Equal(int64(2), stats.Approved)
	suite.Equal(int64(1), stats.Rejected)
	suite.Equal(int64(1), stats.Valid)
	suite.Equal(int64(1), stats.Invalid)
}

func TestReturnsServiceSuite(t *testing.T) {
	suite.Run(t, new(ReturnsServiceTestSuite))
}
