// internal/services/dashboard_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/cache"
	"github.com/shopdesk/crm-backend/internal/config"
	"github.com/shopdesk/crm-backend/internal/models"
)

const dashboardStatsCacheKey = "dashboard:stats"

type DashboardService struct {
	db    *gorm.DB
	cache cache.Cache
	cfg   *config.Config
}

type DashboardStats struct {
	TotalProducts       int64            `json:"total_products"`
	TotalCustomers      int64            `json:"total_customers"`
	TotalBills          int64            `json:"total_bills"`
	TotalRevenue        float64          `json:"total_revenue"`
	TotalInventoryValue float64          `json:"total_inventory_value"`
	LowStockItems       []models.Product `json:"low_stock_items"`
	LowStockCount       int              `json:"low_stock_count"`
	PendingReturns      int64            `json:"pending_returns"`
	RecentBills         []models.Bill    `json:"recent_bills"`
}

func NewDashboardService(db *gorm.DB, statsCache cache.Cache, cfg *config.Config) *DashboardService {
	if statsCache == nil {
		statsCache = cache.Noop{}
	}
	return &DashboardService{
		db:    db,
		cache: statsCache,
		cfg:   cfg,
	}
}

// GetStats aggregates the dashboard counters. The result is cached briefly;
// a cache failure only costs the recompute.
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	if data, ok, err := s.cache.Get(ctx, dashboardStatsCacheKey); err != nil {
		logrus.WithError(err).Warn("Dashboard stats cache read failed")
	} else if ok {
		var stats DashboardStats
		if err := json.Unmarshal(data, &stats); err == nil {
			return &stats, nil
		}
	}

	stats := &DashboardStats{}

	if err := s.db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := s.db.Model(&models.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := s.db.Model(&models.Bill{}).Count(&stats.TotalBills).Error; err != nil {
		return nil, fmt.Errorf("failed to count bills: %w", err)
	}
	if err := s.db.Model(&models.Bill{}).
		Select("COALESCE(SUM(grand_total), 0)").Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if err := s.db.Model(&models.Product{}).
		Select("COALESCE(SUM(price * qty), 0)").Scan(&stats.TotalInventoryValue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum inventory value: %w", err)
	}
	if err := s.db.Where("qty < ? AND status = ?", s.cfg.Billing.LowStockThreshold, models.ProductStatusActive).
		Order("qty").Find(&stats.LowStockItems).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch low stock items: %w", err)
	}
	stats.LowStockCount = len(stats.LowStockItems)
	if err := s.db.Model(&models.ReturnRequest{}).
		Where("status = ?", models.ReturnStatusPending).Count(&stats.PendingReturns).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending returns: %w", err)
	}
	if err := s.db.Preload("Creator").Order("created_at DESC").Limit(5).
		Find(&stats.RecentBills).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent bills: %w", err)
	}

	stats.TotalRevenue = roundCents(stats.TotalRevenue)
	stats.TotalInventoryValue = roundCents(stats.TotalInventoryValue)

	if data, err := json.Marshal(stats); err == nil {
		ttl := time.Duration(s.cfg.Billing.StatsCacheTTL) * time.Second
		if err := s.cache.Set(ctx, dashboardStatsCacheKey, data, ttl); err != nil {
			logrus.WithError(err).Warn("Dashboard stats cache write failed")
		}
	}

	return stats, nil
}
