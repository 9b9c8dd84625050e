// internal/models/customer.go
package models

import "time"

type Customer struct {
	BaseModel
	Name    string `json:"name" gorm:"size:255;not null;index"`
	Email   string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone   string `json:"phone" gorm:"size:30"`
	Address string `json:"address" gorm:"type:text"`

	// Relationships
	Analytics *CustomerAnalytics `json:"analytics,omitempty" gorm:"foreignKey:CustomerID"`
}

// CustomerAnalytics is a derived row, recomputed from scratch by the trust
// engine. One row per customer, created lazily on the first recompute.
type CustomerAnalytics struct {
	BaseModel
	CustomerID     uint      `json:"customer_id" gorm:"uniqueIndex;not null"`
	TotalPurchases int       `json:"total_purchases" gorm:"default:0"`
	TotalReturns   int       `json:"total_returns" gorm:"default:0"`
	ValidReturns   int       `json:"valid_returns" gorm:"default:0"`
	InvalidReturns int       `json:"invalid_returns" gorm:"default:0"`
	TrustScore     int       `json:"trust_score" gorm:"default:0"`
	Tag            TrustTag  `json:"tag" gorm:"type:varchar(20);default:'Normal'"`
	LastActivity   time.Time `json:"last_activity"`

	// Relationships
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}
