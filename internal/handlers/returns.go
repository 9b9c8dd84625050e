// internal/handlers/returns.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopdesk/crm-backend/internal/services"
	"github.com/shopdesk/crm-backend/internal/utils"
)

type ReturnsHandler struct {
	returnsService *services.ReturnsService
}

func NewReturnsHandler(returnsService *services.ReturnsService) *ReturnsHandler {
	return &ReturnsHandler{
		returnsService: returnsService,
	}
}

// POST /returns
func (h *ReturnsHandler) RequestReturn(c *gin.Context) {
	var req services.RequestReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	ret, err := h.returnsService.RequestReturn(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"return": ret,
	})
}

// GET /returns
func (h *ReturnsHandler) ListReturns(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	returns, total, err := h.returnsService.ListReturns(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(returns, total, params))
}

// GET /returns/stats
func (h *ReturnsHandler) GetStats(c *gin.Context) {
	stats, err := h.returnsService.GetStats()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /returns/:id
func (h *ReturnsHandler) GetReturn(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnsService.GetReturn(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"return": ret,
	})
}

// PUT /returns/:id/approve
func (h *ReturnsHandler) ApproveReturn(c *gin.Context) {
	h.decide(c, true)
}

// PUT /returns/:id/reject
func (h *ReturnsHandler) RejectReturn(c *gin.Context) {
	h.decide(c, false)
}

func (h *ReturnsHandler) decide(c *gin.Context, approve bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// The body is optional; a bare approval carries no validity flag or notes.
	var req services.DecideReturnRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid input", err.Error())
			return
		}
	}
	req.Approve = approve

	var deciderID *uint
	if userID, exists := utils.GetUserIDFromContext(c); exists {
		deciderID = &userID
	}

	ret, err := h.returnsService.Decide(id, deciderID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"return": ret,
	})
}
