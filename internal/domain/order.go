package domain

import "time"

// OrderStatus is externally driven: any status may be overwritten by an
// authorized caller, no transition order is enforced.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order aggregates its line items; they are created and deleted only
// together with the order.
type Order struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id" form:"id"`
	ClientID  int64          `gorm:"index;not null" json:"client_id" form:"client_id"`
	Status    OrderStatus    `gorm:"size:16;not null;default:pending" json:"status" form:"status"`
	CreatedAt time.Time      `json:"created_at"`
	Products  []OrderProduct `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"products"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// Total sums the line subtotals
func (o *Order) Total() float64 {
	var total float64
	for _, line := range o.Products {
		total += line.Subtotal
	}
	return total
}

// OrderProduct is one order line. UnitPrice is a snapshot of the product
// price at order-creation time, never a live reference.
type OrderProduct struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   int64   `gorm:"index;not null" json:"-"`
	ProductID int64   `gorm:"index;not null" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Subtotal  float64 `gorm:"not null" json:"subtotal"`
}

// TableName Specify table name
func (OrderProduct) TableName() string {
	return "order_products"
}
