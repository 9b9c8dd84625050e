// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
	"github.com/shopdesk/crm-backend/internal/utils"
)

// ProductService is catalog management. Stock quantities are owned by the
// inventory service once a product is live; catalog edits set the base
// quantity but billing and returns are the only paths that mutate it during
// normal operation.
type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=255"`
	Category string  `json:"category" validate:"required,max=100"`
	Price    float64 `json:"price" validate:"required,min=0.01"`
	TaxRate  float64 `json:"tax_rate" validate:"min=0,max=100"`
	Qty      int     `json:"qty" validate:"min=0"`
	Status   string  `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type UpdateProductRequest struct {
	Name     string   `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Category string   `json:"category,omitempty" validate:"omitempty,max=100"`
	Price    *float64 `json:"price,omitempty" validate:"omitempty,min=0.01"`
	TaxRate  *float64 `json:"tax_rate,omitempty" validate:"omitempty,min=0,max=100"`
	Qty      *int     `json:"qty,omitempty" validate:"omitempty,min=0"`
	Status   string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	Status  *models.ProductStatus `json:"status,omitempty"`
	InStock *bool                 `json:"in_stock,omitempty"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	status := models.ProductStatusActive
	if req.Status != "" {
		status = models.ProductStatus(req.Status)
	}

	product := &models.Product{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Price:    req.Price,
		TaxRate:  req.TaxRate,
		Qty:      req.Qty,
		Status:   status,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) UpdateProduct(id uint, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Category != "" {
		updates["category"] = strings.TrimSpace(req.Category)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.TaxRate != nil {
		updates["tax_rate"] = *req.TaxRate
	}
	if req.Qty != nil {
		updates["qty"] = *req.Qty
	}
	if req.Status != "" {
		updates["status"] = models.ProductStatus(req.Status)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return &product, nil
}

// DeleteProduct soft-deletes a product that was never sold. Products with
// bill items stay on record so historic receipts keep resolving.
func (s *ProductService) DeleteProduct(id uint) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	var salesCount int64
	if err := s.db.Model(&models.BillItem{}).Where("product_id = ?", id).Count(&salesCount).Error; err != nil {
		return fmt.Errorf("failed to check sales: %w", err)
	}

	if salesCount > 0 {
		return ErrProductInUse
	}

	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchTerm)
	}

	if params.InStock != nil && *params.InStock {
		query = query.Where("qty > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "qty", "category"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}
