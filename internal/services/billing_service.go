// internal/services/billing_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
	"github.com/shopdesk/crm-backend/internal/utils"
)

// BillingService materializes a sale: bill header, line items, stock
// decrements and the transaction id are committed as one atomic unit.
type BillingService struct {
	db               *gorm.DB
	inventoryService *InventoryService
	trustService     *TrustService
	notification     *NotificationService
}

type BillItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

type CreateBillRequest struct {
	CustomerName string            `json:"customer_name" validate:"required,min=1,max=255"`
	Phone        string            `json:"phone,omitempty" validate:"omitempty,max=30"`
	Items        []BillItemRequest `json:"items" validate:"required,min=1,dive"`
}

func NewBillingService(db *gorm.DB, inventoryService *InventoryService, trustService *TrustService, notification *NotificationService) *BillingService {
	return &BillingService{
		db:               db,
		inventoryService: inventoryService,
		trustService:     trustService,
		notification:     notification,
	}
}

// CreateBill validates every line item, allocates the next transaction id,
// inserts the bill and its items and decrements stock, all in one
// transaction. Any failure rolls the whole sale back. The customer is
// resolved by name once, at creation time, and the id is stamped on the bill
// so analytics never re-match by string.
func (s *BillingService) CreateBill(createdBy *uint, req *CreateBillRequest) (*models.Bill, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	bill := &models.Bill{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Phone:        strings.TrimSpace(req.Phone),
		CreatedBy:    createdBy,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []models.BillItem
		var totalAmount, totalTax float64

		for _, line := range req.Items {
			product, err := s.inventoryService.GetProduct(tx, line.ProductID)
			if err != nil {
				return err
			}
			if product.Status != models.ProductStatusActive {
				return fmt.Errorf("%w: %s", ErrProductInactive, product.Name)
			}

			totalPrice := roundCents(product.Price * float64(line.Quantity))
			taxAmount := roundCents(totalPrice * product.TaxRate / 100)
			totalAmount += totalPrice
			totalTax += taxAmount

			items = append(items, models.BillItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
				TaxRate:     product.TaxRate,
				TotalPrice:  totalPrice,
			})

			if err := s.inventoryService.Reserve(tx, product.ID, line.Quantity); err != nil {
				return err
			}
		}

		tid, err := NextTransactionID(tx)
		if err != nil {
			return err
		}

		bill.TransactionID = tid
		bill.TotalAmount = roundCents(totalAmount)
		bill.TotalTax = roundCents(totalTax)
		bill.GrandTotal = roundCents(totalAmount + totalTax)

		var customer models.Customer
		if err := tx.Where("name = ?", bill.CustomerName).First(&customer).Error; err == nil {
			bill.CustomerID = &customer.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to resolve customer: %w", err)
		}

		if err := tx.Create(bill).Error; err != nil {
			return fmt.Errorf("failed to create bill: %w", err)
		}

		for i := range items {
			items[i].BillID = bill.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create bill items: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// Trust recompute is a best-effort trigger: the bill is already
	// committed and a scoring failure must not surface to the caller.
	if bill.CustomerID != nil {
		s.trustService.RecomputeAsync(*bill.CustomerID)
	}

	if s.notification != nil {
		go s.notification.CheckLowStock(billProductIDs(req.Items))
	}

	// Load full receipt
	s.db.Preload("Items").Preload("Creator").First(bill, bill.ID)

	return bill, nil
}

func (s *BillingService) GetBill(id uint) (*models.Bill, error) {
	var bill models.Bill
	if err := s.db.Preload("Items").Preload("Creator").Preload("Customer").First(&bill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &bill, nil
}

func (s *BillingService) ListBills(params utils.PaginationParams) ([]models.Bill, int64, error) {
	query := s.db.Model(&models.Bill{}).Preload("Creator")

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(customer_name) LIKE ? OR LOWER(transaction_id) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	allowedSortFields := []string{"created_at", "transaction_id", "customer_name", "grand_total"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var bills []models.Bill
	if err := query.Find(&bills).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bills: %w", err)
	}

	return bills, total, nil
}

// FindByTransactionID looks a bill up by its external id, normalizing user
// input the way the billing screen expects: case-insensitive, with the TID
// prefix added when only the number was typed.
func (s *BillingService) FindByTransactionID(tid string) (*models.Bill, error) {
	tid = strings.ToUpper(strings.TrimSpace(tid))
	if tid == "" {
		return nil, ErrBillNotFound
	}
	if !strings.HasPrefix(tid, "TID") {
		tid = "TID" + tid
	}

	var bill models.Bill
	if err := s.db.Preload("Items").Preload("Creator").Where("transaction_id = ?", tid).First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &bill, nil
}

func billProductIDs(items []BillItemRequest) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// roundCents keeps currency math exact to two decimals.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
