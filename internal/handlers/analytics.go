// internal/handlers/analytics.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopdesk/crm-backend/internal/services"
	"github.com/shopdesk/crm-backend/internal/utils"
)

type AnalyticsHandler struct {
	customerService *services.CustomerService
	trustService    *services.TrustService
}

func NewAnalyticsHandler(customerService *services.CustomerService, trustService *services.TrustService) *AnalyticsHandler {
	return &AnalyticsHandler{
		customerService: customerService,
		trustService:    trustService,
	}
}

// GET /analytics/customers
func (h *AnalyticsHandler) GetCustomerOverview(c *gin.Context) {
	overview, err := h.customerService.GetAnalyticsOverview()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, overview)
}

// POST /analytics/recompute
//
// Rebuilds every customer's trust snapshot from the bill and return tables.
func (h *AnalyticsHandler) RecomputeAll(c *gin.Context) {
	recomputed, err := h.trustService.RecomputeAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"recomputed": recomputed,
	})
}
