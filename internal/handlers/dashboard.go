// internal/handlers/dashboard.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopdesk/crm-backend/internal/services"
	"github.com/shopdesk/crm-backend/internal/utils"
)

type DashboardHandler struct {
	dashboardService    *services.DashboardService
	notificationService *services.NotificationService
}

func NewDashboardHandler(dashboardService *services.DashboardService, notificationService *services.NotificationService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService:    dashboardService,
		notificationService: notificationService,
	}
}

// GET /dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /dashboard/notifications
func (h *DashboardHandler) GetNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, err := h.notificationService.ListUnread(limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"notifications": notifications,
	})
}
