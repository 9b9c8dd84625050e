// internal/handlers/customers.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopdesk/crm-backend/internal/services"
	"github.com/shopdesk/crm-backend/internal/utils"
)

type CustomerHandler struct {
	customerService *services.CustomerService
	trustService    *services.TrustService
}

func NewCustomerHandler(customerService *services.CustomerService, trustService *services.TrustService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		trustService:    trustService,
	}
}

// POST /customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	customer, err := h.customerService.CreateCustomer(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"customer": customer,
	})
}

// GET /customers
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	customers, total, err := h.customerService.ListCustomers(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(customers, total, params))
}

// GET /customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"customer": customer,
	})
}

// PUT /customers/:id
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	customer, err := h.customerService.UpdateCustomer(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"customer": customer,
	})
}

// GET /customers/:id/profile
func (h *CustomerHandler) GetProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.customerService.GetProfile(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"profile": profile,
	})
}

// POST /customers/:id/recompute-trust
func (h *CustomerHandler) RecomputeTrust(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.trustService.Recompute(id); err != nil {
		respondServiceError(c, err)
		return
	}

	customer, err := h.customerService.GetCustomer(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"customer": customer,
	})
}
