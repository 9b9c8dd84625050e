// internal/models/bill.go
package models

// Bill is immutable after creation. CustomerID is resolved from the customer
// name at creation time so downstream analytics never depend on string
// matching; it stays nil for walk-in customers with no CRM record.
type Bill struct {
	BaseModel
	TransactionID string  `json:"transaction_id" gorm:"uniqueIndex;size:20;not null"`
	CustomerID    *uint   `json:"customer_id" gorm:"index"`
	CustomerName  string  `json:"customer_name" gorm:"size:255;not null;index"`
	Phone         string  `json:"phone" gorm:"size:30"`
	TotalAmount   float64 `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	TotalTax      float64 `json:"total_tax" gorm:"type:decimal(10,2);not null"`
	GrandTotal    float64 `json:"grand_total" gorm:"type:decimal(10,2);not null"`
	CreatedBy     *uint   `json:"created_by" gorm:"index"`

	// Relationships
	Customer *Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Creator  *User      `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Items    []BillItem `json:"items,omitempty" gorm:"foreignKey:BillID"`
}

type BillItem struct {
	BaseModel
	BillID      uint    `json:"bill_id" gorm:"not null;index"`
	ProductID   uint    `json:"product_id" gorm:"not null;index"`
	ProductName string  `json:"product_name" gorm:"size:255;not null"`
	Quantity    int     `json:"quantity" gorm:"not null"`
	UnitPrice   float64 `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	TaxRate     float64 `json:"tax_rate" gorm:"type:decimal(5,2);not null"`
	TotalPrice  float64 `json:"total_price" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TaxAmount is derived, never stored: total_price * tax_rate / 100.
func (i *BillItem) TaxAmount() float64 {
	return i.TotalPrice * i.TaxRate / 100
}
