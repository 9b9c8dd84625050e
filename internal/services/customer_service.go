// internal/services/customer_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
	"github.com/shopdesk/crm-backend/internal/utils"
)

type CustomerService struct {
	db *gorm.DB
}

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address string `json:"address,omitempty"`
}

type UpdateCustomerRequest struct {
	Name    string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address string `json:"address,omitempty"`
}

// CustomerProfile aggregates everything the profile screen shows: the
// customer record, the analytics snapshot and the full purchase and return
// history with money totals.
type CustomerProfile struct {
	Customer           *models.Customer          `json:"customer"`
	Analytics          *models.CustomerAnalytics `json:"analytics,omitempty"`
	Purchases          []models.Bill             `json:"purchases"`
	Returns            []models.ReturnRequest    `json:"returns"`
	TotalPurchases     int                       `json:"total_purchases"`
	TotalReturns       int                       `json:"total_returns"`
	TotalSpent         float64                   `json:"total_spent"`
	TotalReturnedValue float64                   `json:"total_returned_value"`
	IsBanned           bool                      `json:"is_banned"`
}

// AnalyticsOverview backs the customer-analytics screen: all customers with
// their analytics rows plus aggregate tallies.
type AnalyticsOverview struct {
	Customers      []models.Customer `json:"customers"`
	TotalCustomers int               `json:"total_customers"`
	AvgTrustScore  float64           `json:"avg_trust_score"`
	TotalPurchases int               `json:"total_purchases"`
	TotalReturns   int               `json:"total_returns"`
	ValidReturns   int               `json:"valid_returns"`
	InvalidReturns int               `json:"invalid_returns"`
	TagStats       map[string]int    `json:"tag_stats"`
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func (s *CustomerService) CreateCustomer(req *CreateCustomerRequest) (*models.Customer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	customer := &models.Customer{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}

	var existing models.Customer
	if err := s.db.Where("email = ?", customer.Email).First(&existing).Error; err == nil {
		return nil, errors.New("email already registered")
	}

	if err := s.db.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

func (s *CustomerService) GetCustomer(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.Preload("Analytics").First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &customer, nil
}

func (s *CustomerService) UpdateCustomer(id uint, req *UpdateCustomerRequest) (*models.Customer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var customer models.Customer
	if err := s.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		updates["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Phone != "" {
		updates["phone"] = strings.TrimSpace(req.Phone)
	}
	if req.Address != "" {
		updates["address"] = strings.TrimSpace(req.Address)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&customer).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update customer: %w", err)
		}
	}

	return &customer, nil
}

func (s *CustomerService) ListCustomers(params utils.PaginationParams) ([]models.Customer, int64, error) {
	query := s.db.Model(&models.Customer{}).Preload("Analytics")

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "email"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	return customers, total, nil
}

// GetProfile builds the full customer profile. History is keyed by the
// customer id stamped on bills at creation time.
func (s *CustomerService) GetProfile(id uint) (*CustomerProfile, error) {
	customer, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}

	var bills []models.Bill
	if err := s.db.Preload("Creator").Where("customer_id = ?", id).
		Order("created_at DESC").Find(&bills).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch bills: %w", err)
	}

	var returns []models.ReturnRequest
	if err := s.db.Preload("Approver").Where("customer_id = ?", id).
		Order("created_at DESC").Find(&returns).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch returns: %w", err)
	}

	profile := &CustomerProfile{
		Customer:       customer,
		Analytics:      customer.Analytics,
		Purchases:      bills,
		Returns:        returns,
		TotalPurchases: len(bills),
		TotalReturns:   len(returns),
	}

	for _, bill := range bills {
		profile.TotalSpent += bill.GrandTotal
	}
	for _, ret := range returns {
		if ret.Status == models.ReturnStatusApproved {
			profile.TotalReturnedValue += ret.TotalAmount
		}
	}
	profile.TotalSpent = roundCents(profile.TotalSpent)
	profile.TotalReturnedValue = roundCents(profile.TotalReturnedValue)

	if customer.Analytics != nil {
		profile.IsBanned = customer.Analytics.Tag == models.TrustTagBanned
	}

	return profile, nil
}

// GetAnalyticsOverview joins customers with their analytics rows and tallies
// the tag distribution for the overview screen.
func (s *CustomerService) GetAnalyticsOverview() (*AnalyticsOverview, error) {
	var customers []models.Customer
	if err := s.db.Preload("Analytics").Order("name").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}

	overview := &AnalyticsOverview{
		Customers:      customers,
		TotalCustomers: len(customers),
		TagStats:       make(map[string]int),
	}

	scoreSum := 0
	for _, customer := range customers {
		if customer.Analytics == nil {
			overview.TagStats["Unknown"]++
			continue
		}
		a := customer.Analytics
		scoreSum += a.TrustScore
		overview.TotalPurchases += a.TotalPurchases
		overview.TotalReturns += a.TotalReturns
		overview.ValidReturns += a.ValidReturns
		overview.InvalidReturns += a.InvalidReturns
		overview.TagStats[string(a.Tag)]++
	}

	if overview.TotalCustomers > 0 {
		overview.AvgTrustScore = float64(scoreSum) / float64(overview.TotalCustomers)
	}

	return overview, nil
}
