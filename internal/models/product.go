// internal/models/product.go
package models

type Product struct {
	BaseModel
	Name     string        `json:"name" gorm:"size:255;not null;index"`
	Category string        `json:"category" gorm:"size:100;index"`
	Price    float64       `json:"price" gorm:"type:decimal(10,2);not null"`
	TaxRate  float64       `json:"tax_rate" gorm:"type:decimal(5,2);not null;default:0"`
	Qty      int           `json:"qty" gorm:"not null;default:0"`
	Status   ProductStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
}
