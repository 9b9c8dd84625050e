// internal/services/returns_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
	"github.com/shopdesk/crm-backend/internal/utils"
)

// ReturnsService manages the lifecycle of a return request against a
// committed bill: created pending, decided exactly once, stock restored only
// for approved valid returns.
type ReturnsService struct {
	db               *gorm.DB
	inventoryService *InventoryService
	trustService     *TrustService
	notification     *NotificationService
}

type RequestReturnRequest struct {
	BillID    uint   `json:"bill_id" validate:"required"`
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Reason    string `json:"reason" validate:"required"`
}

type DecideReturnRequest struct {
	Approve bool   `json:"approve"`
	IsValid bool   `json:"is_valid"`
	Notes   string `json:"notes,omitempty"`
}

type ReturnStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Valid    int64 `json:"valid"`
	Invalid  int64 `json:"invalid"`
}

func NewReturnsService(db *gorm.DB, inventoryService *InventoryService, trustService *TrustService, notification *NotificationService) *ReturnsService {
	return &ReturnsService{
		db:               db,
		inventoryService: inventoryService,
		trustService:     trustService,
		notification:     notification,
	}
}

// RequestReturn records a pending return against an existing bill. Customer
// and transaction identifiers are copied from the bill; stock is untouched
// until the request is approved.
func (s *ReturnsService) RequestReturn(req *RequestReturnRequest) (*models.ReturnRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var bill models.Bill
	if err := s.db.First(&bill, req.BillID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	ret := &models.ReturnRequest{
		BillID:        bill.ID,
		TransactionID: bill.TransactionID,
		CustomerID:    bill.CustomerID,
		CustomerName:  bill.CustomerName,
		Phone:         bill.Phone,
		ProductID:     product.ID,
		ProductName:   product.Name,
		Quantity:      req.Quantity,
		UnitPrice:     product.Price,
		TotalAmount:   roundCents(product.Price * float64(req.Quantity)),
		Reason:        req.Reason,
		Status:        models.ReturnStatusPending,
	}

	if err := s.db.Create(ret).Error; err != nil {
		return nil, fmt.Errorf("failed to create return request: %w", err)
	}

	if s.notification != nil {
		go s.notification.NotifyReturnRequested(ret)
	}

	return ret, nil
}

// Decide transitions a pending return to its terminal state. The status
// update is conditional on the request still being pending, in the same
// transaction as the stock release, so a repeated approval cannot
// double-release stock: the second call fails ErrAlreadyDecided.
func (s *ReturnsService) Decide(returnID uint, deciderID *uint, req *DecideReturnRequest) (*models.ReturnRequest, error) {
	var ret models.ReturnRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ret, returnID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReturnNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		status := models.ReturnStatusApproved
		isValid := req.IsValid
		if !req.Approve {
			status = models.ReturnStatusRejected
			isValid = false
		}

		now := time.Now()
		result := tx.Model(&models.ReturnRequest{}).
			Where("id = ? AND status = ?", returnID, models.ReturnStatusPending).
			Updates(map[string]interface{}{
				"status":      status,
				"is_valid":    isValid,
				"approved_by": deciderID,
				"approved_at": now,
				"notes":       req.Notes,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update return request: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyDecided
		}

		if req.Approve && isValid {
			if err := s.inventoryService.Release(tx, ret.ProductID, ret.Quantity); err != nil {
				return err
			}
		}

		ret.Status = status
		ret.IsValid = isValid
		ret.ApprovedBy = deciderID
		ret.ApprovedAt = &now
		ret.Notes = req.Notes
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Best-effort trust recompute after the decision is committed.
	if customerID, ok := s.resolveCustomer(&ret); ok {
		s.trustService.RecomputeAsync(customerID)
	}

	return &ret, nil
}

func (s *ReturnsService) GetReturn(id uint) (*models.ReturnRequest, error) {
	var ret models.ReturnRequest
	if err := s.db.Preload("Product").Preload("Approver").First(&ret, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReturnNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &ret, nil
}

func (s *ReturnsService) ListReturns(params utils.PaginationParams) ([]models.ReturnRequest, int64, error) {
	query := s.db.Model(&models.ReturnRequest{}).Preload("Product").Preload("Approver")

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("customer_name LIKE ? OR transaction_id LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count returns: %w", err)
	}

	allowedSortFields := []string{"created_at", "status", "customer_name", "total_amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var returns []models.ReturnRequest
	if err := query.Find(&returns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch returns: %w", err)
	}

	return returns, total, nil
}

// GetStats tallies the management overview. Valid and invalid follow the
// scoring definitions: a return counts valid once approved with is_valid
// set, invalid once rejected; pending requests count in neither bucket.
func (s *ReturnsService) GetStats() (*ReturnStats, error) {
	stats := &ReturnStats{}

	if err := s.db.Model(&models.ReturnRequest{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count returns: %w", err)
	}
	if err := s.db.Model(&models.ReturnRequest{}).Where("status = ?", models.ReturnStatusPending).Count(&stats.Pending).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending returns: %w", err)
	}
	if err := s.db.Model(&models.ReturnRequest{}).Where("status = ?", models.ReturnStatusApproved).Count(&stats.Approved).Error; err != nil {
		return nil, fmt.Errorf("failed to count approved returns: %w", err)
	}
	if err := s.db.Model(&models.ReturnRequest{}).Where("status = ?", models.ReturnStatusRejected).Count(&stats.Rejected).Error; err != nil {
		return nil, fmt.Errorf("failed to count rejected returns: %w", err)
	}
	if err := s.db.Model(&models.ReturnRequest{}).Where("status = ? AND is_valid = ?", models.ReturnStatusApproved, true).Count(&stats.Valid).Error; err != nil {
		return nil, fmt.Errorf("failed to count valid returns: %w", err)
	}
	stats.Invalid = stats.Rejected

	return stats, nil
}

func (s *ReturnsService) resolveCustomer(ret *models.ReturnRequest) (uint, bool) {
	if ret.CustomerID != nil {
		return *ret.CustomerID, true
	}

	// Legacy rows created before customer ids were threaded through bills.
	var customer models.Customer
	if err := s.db.Where("name = ?", ret.CustomerName).First(&customer).Error; err != nil {
		return 0, false
	}
	return customer.ID, true
}
