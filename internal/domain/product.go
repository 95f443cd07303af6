package domain

import "time"

// Product represents a catalog item with finite stock
type Product struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id" form:"id"`
	Description    string     `gorm:"size:255;not null" json:"description" form:"description"`
	SaleValue      float64    `gorm:"not null" json:"sale_value" form:"sale_value"` // unit price in main currency units
	Barcode        string     `gorm:"size:255;not null;uniqueIndex" json:"barcode" form:"barcode"`
	Section        string     `gorm:"size:50;not null;index" json:"section" form:"section"`
	Category       string     `gorm:"size:100;not null;index" json:"category" form:"category"`
	InitialStock   int        `gorm:"not null;default:0" json:"initial_stock" form:"initial_stock"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty" form:"expiration_date"`
	Image          string     `gorm:"type:text" json:"image,omitempty" form:"image"`
	Availability   bool       `gorm:"-" json:"availability"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

// FillAvailability sets the derived availability flag from the stock sign
func (p *Product) FillAvailability() {
	p.Availability = p.InitialStock > 0
}
