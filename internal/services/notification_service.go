// internal/services/notification_service.go
package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/config"
	"github.com/shopdesk/crm-backend/internal/models"
)

// NotificationService records operational notifications for the back office:
// products running low after a sale, new return requests awaiting a
// decision. Everything here is best-effort; a failed notification is logged
// and dropped.
type NotificationService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{
		db:  db,
		cfg: cfg,
	}
}

// CheckLowStock inspects the given products after a committed sale and
// raises a notification for each one at or below the configured threshold.
func (s *NotificationService) CheckLowStock(productIDs []uint) {
	if len(productIDs) == 0 {
		return
	}

	var products []models.Product
	if err := s.db.Where("id IN ? AND status = ? AND qty < ?",
		productIDs, models.ProductStatusActive, s.cfg.Billing.LowStockThreshold).
		Find(&products).Error; err != nil {
		logrus.WithError(err).Error("Failed to check low stock")
		return
	}

	for _, product := range products {
		productID := product.ID
		notification := &models.Notification{
			Type:                "low_stock",
			Title:               "Low stock",
			Message:             fmt.Sprintf("Product %q is down to %d units", product.Name, product.Qty),
			Priority:            "high",
			RelatedResourceType: "product",
			RelatedResourceID:   &productID,
		}

		if err := s.db.Create(notification).Error; err != nil {
			logrus.WithError(err).WithField("product_id", product.ID).
				Error("Failed to create low stock notification")
		}
	}
}

// NotifyReturnRequested records a notification for a newly filed return.
func (s *NotificationService) NotifyReturnRequested(ret *models.ReturnRequest) {
	returnID := ret.ID
	notification := &models.Notification{
		Type:                "return_requested",
		Title:               "New return request",
		Message:             fmt.Sprintf("Return of %d x %q requested against %s", ret.Quantity, ret.ProductName, ret.TransactionID),
		Priority:            "medium",
		RelatedResourceType: "return_request",
		RelatedResourceID:   &returnID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("return_id", ret.ID).
			Error("Failed to create return notification")
	}
}

func (s *NotificationService) ListUnread(limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var notifications []models.Notification
	if err := s.db.Where("status = ?", "unread").
		Order("created_at DESC").Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}
