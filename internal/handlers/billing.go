// internal/handlers/billing.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopdesk/crm-backend/internal/services"
	"github.com/shopdesk/crm-backend/internal/utils"
)

type BillingHandler struct {
	billingService *services.BillingService
}

func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

// POST /bills
func (h *BillingHandler) CreateBill(c *gin.Context) {
	var req services.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	var createdBy *uint
	if userID, exists := utils.GetUserIDFromContext(c); exists {
		createdBy = &userID
	}

	bill, err := h.billingService.CreateBill(createdBy, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"bill": bill,
	})
}

// GET /bills
func (h *BillingHandler) ListBills(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	bills, total, err := h.billingService.ListBills(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(bills, total, params))
}

// GET /bills/:id
func (h *BillingHandler) GetBill(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bill, err := h.billingService.GetBill(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"bill": bill,
	})
}

// GET /bills/by-transaction/:tid
//
// Accepts both "TID0042" and the bare "0042" a cashier might type.
func (h *BillingHandler) GetBillByTransactionID(c *gin.Context) {
	tid := c.Param("tid")
	if tid == "" {
		utils.BadRequestResponse(c, "Transaction ID is required", nil)
		return
	}

	bill, err := h.billingService.FindByTransactionID(tid)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"bill": bill,
	})
}
