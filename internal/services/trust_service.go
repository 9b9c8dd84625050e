// internal/services/trust_service.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
)

// TrustService recomputes a customer's derived analytics from the bill
// ledger and return history. Every recompute starts from scratch; nothing is
// maintained incrementally, so the analytics row can always be rebuilt.
type TrustService struct {
	db *gorm.DB

	mtx   sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewTrustService(db *gorm.DB) *TrustService {
	return &TrustService{
		db:    db,
		locks: make(map[uint]*sync.Mutex),
	}
}

// Recompute rebuilds the analytics row for one customer. Concurrent
// recomputes for the same customer serialize on a per-customer lock so the
// read-then-upsert cannot lose updates; different customers run in parallel.
func (s *TrustService) Recompute(customerID uint) error {
	lock := s.customerLock(customerID)
	lock.Lock()
	defer lock.Unlock()

	var customer models.Customer
	if err := s.db.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	var purchases, totalReturns, validReturns, invalidReturns int64

	if err := s.db.Model(&models.Bill{}).Where("customer_id = ?", customerID).Count(&purchases).Error; err != nil {
		return fmt.Errorf("failed to count purchases: %w", err)
	}
	if err := s.db.Model(&models.ReturnRequest{}).Where("customer_id = ?", customerID).Count(&totalReturns).Error; err != nil {
		return fmt.Errorf("failed to count returns: %w", err)
	}
	if err := s.db.Model(&models.ReturnRequest{}).
		Where("customer_id = ? AND status = ? AND is_valid = ?", customerID, models.ReturnStatusApproved, true).
		Count(&validReturns).Error; err != nil {
		return fmt.Errorf("failed to count valid returns: %w", err)
	}
	if err := s.db.Model(&models.ReturnRequest{}).
		Where("customer_id = ? AND status = ? AND is_valid = ?", customerID, models.ReturnStatusRejected, false).
		Count(&invalidReturns).Error; err != nil {
		return fmt.Errorf("failed to count invalid returns: %w", err)
	}

	score := CalculateTrustScore(int(purchases), int(validReturns), int(invalidReturns))
	tag := AssignTrustTag(score)

	updates := models.CustomerAnalytics{
		CustomerID:     customerID,
		TotalPurchases: int(purchases),
		TotalReturns:   int(totalReturns),
		ValidReturns:   int(validReturns),
		InvalidReturns: int(invalidReturns),
		TrustScore:     score,
		Tag:            tag,
		LastActivity:   time.Now(),
	}

	var existing models.CustomerAnalytics
	err := s.db.Where("customer_id = ?", customerID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(&updates).Error; err != nil {
			return fmt.Errorf("failed to create analytics: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&existing).Updates(map[string]interface{}{
		"total_purchases": updates.TotalPurchases,
		"total_returns":   updates.TotalReturns,
		"valid_returns":   updates.ValidReturns,
		"invalid_returns": updates.InvalidReturns,
		"trust_score":     updates.TrustScore,
		"tag":             updates.Tag,
		"last_activity":   updates.LastActivity,
	}).Error; err != nil {
		return fmt.Errorf("failed to update analytics: %w", err)
	}

	return nil
}

// RecomputeAsync dispatches a best-effort recompute. Failures are logged,
// never propagated: the operation that triggered the recompute has already
// committed.
func (s *TrustService) RecomputeAsync(customerID uint) {
	go func() {
		if err := s.Recompute(customerID); err != nil {
			logrus.WithError(err).WithField("customer_id", customerID).
				Warn("Best-effort trust recompute failed")
		}
	}()
}

// RecomputeAll rebuilds analytics for every customer, continuing past
// individual failures, and reports how many succeeded.
func (s *TrustService) RecomputeAll() (int, error) {
	var customerIDs []uint
	if err := s.db.Model(&models.Customer{}).Pluck("id", &customerIDs).Error; err != nil {
		return 0, fmt.Errorf("failed to list customers: %w", err)
	}

	count := 0
	for _, id := range customerIDs {
		if err := s.Recompute(id); err != nil {
			logrus.WithError(err).WithField("customer_id", id).
				Warn("Trust recompute failed during batch run")
			continue
		}
		count++
	}

	return count, nil
}

func (s *TrustService) customerLock(customerID uint) *sync.Mutex {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	lock, ok := s.locks[customerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[customerID] = lock
	}
	return lock
}

// CalculateTrustScore is the scoring formula: each purchase earns a point,
// each valid return earns one back, each invalid return costs two.
func CalculateTrustScore(purchases, validReturns, invalidReturns int) int {
	return purchases - 2*invalidReturns + validReturns
}

// AssignTrustTag maps a score to its categorical tag. Pure function of the
// score; the thresholds are a fixed business contract.
func AssignTrustTag(score int) models.TrustTag {
	switch {
	case score <= 0:
		return models.TrustTagBanned
	case score >= 20:
		return models.TrustTagVIP
	case score >= 10:
		return models.TrustTagGood
	case score >= 5:
		return models.TrustTagNormal
	case score >= 1:
		return models.TrustTagRisky
	default:
		return models.TrustTagBad
	}
}
