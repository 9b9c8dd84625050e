// internal/models/returns.go
package models

import "time"

// ReturnRequest is created pending and transitions exactly once to approved
// or rejected. IsValid is meaningful only once the request is terminal.
type ReturnRequest struct {
	BaseModel
	BillID        uint         `json:"bill_id" gorm:"not null;index"`
	TransactionID string       `json:"transaction_id" gorm:"size:20;not null;index"`
	CustomerID    *uint        `json:"customer_id" gorm:"index"`
	CustomerName  string       `json:"customer_name" gorm:"size:255;not null;index"`
	Phone         string       `json:"phone" gorm:"size:30"`
	ProductID     uint         `json:"product_id" gorm:"not null;index"`
	ProductName   string       `json:"product_name" gorm:"size:255;not null"`
	Quantity      int          `json:"quantity" gorm:"not null"`
	UnitPrice     float64      `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	TotalAmount   float64      `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Reason        string       `json:"reason" gorm:"type:text"`
	Status        ReturnStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	IsValid       bool         `json:"is_valid" gorm:"default:false"`
	ApprovedBy    *uint        `json:"approved_by" gorm:"index"`
	ApprovedAt    *time.Time   `json:"approved_at"`
	Notes         string       `json:"notes" gorm:"type:text"`

	// Relationships
	Bill     *Bill    `json:"bill,omitempty" gorm:"foreignKey:BillID"`
	Product  *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Approver *User    `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy"`
}
