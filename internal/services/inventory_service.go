// internal/services/inventory_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
)

// InventoryService owns stock mutations. Reserve and Release run inside a
// caller-supplied transaction so a bill or return decision commits stock
// changes together with its own rows.
type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// Reserve decrements stock for a sale. The decrement is a single conditional
// UPDATE (qty >= requested, status active), so concurrent callers on the same
// product serialize on the row and stock can never go negative. A zero-row
// update is re-read to tell NotFound, Inactive and InsufficientStock apart.
func (s *InventoryService) Reserve(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInsufficientStock)
	}

	result := tx.Model(&models.Product{}).
		Where("id = ? AND status = ? AND qty >= ?", productID, models.ProductStatusActive, qty).
		UpdateColumn("qty", gorm.Expr("qty - ?", qty))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}
		if product.Status != models.ProductStatusActive {
			return ErrProductInactive
		}
		return fmt.Errorf("%w: only %d of product %d available", ErrInsufficientStock, product.Qty, productID)
	}

	return nil
}

// Release restores stock after an approved return. The increment is
// unconditional; inactive products get their stock back too.
func (s *InventoryService) Release(tx *gorm.DB, productID uint, qty int) error {
	result := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("qty", gorm.Expr("qty + ?", qty))
	if result.Error != nil {
		return fmt.Errorf("failed to release stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// GetProduct loads a product without locking; billing uses it for price and
// tax data before the conditional decrement enforces the stock invariant.
func (s *InventoryService) GetProduct(tx *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &product, nil
}
