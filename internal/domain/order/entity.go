// internal/domain/order/entity.go
package order

import (
	"time"
)

// Status represents the order status. Status is the only mutable field of
// a persisted order.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is the immutable record of a finalized cart. Lines are value
// snapshots frozen against later catalog changes; TotalAmount is captured
// at creation and never recomputed.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OrderNumber   string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	CustomerName  string      `gorm:"not null;size:255" json:"customer_name"`
	CustomerEmail string      `gorm:"not null;size:255" json:"customer_email"`
	SessionID     string      `gorm:"not null;size:64;index" json:"session_id"`
	UserID        *uint       `gorm:"index" json:"user_id,omitempty"` // Nullable for guest orders
	Status        Status      `gorm:"not null;default:'Processing';size:30" json:"status"`
	TotalAmount   int64       `gorm:"not null" json:"total_amount"` // In cents
	Lines         []OrderLine `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"lines"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderLine is a snapshot of one cart line at finalize time. Product and
// variant ids are back-references only; display fields are copied values.
type OrderLine struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	VariantPriceID uint      `gorm:"not null" json:"variant_price_id"`
	ProductID      uint      `gorm:"not null" json:"product_id"`
	ProductName    string    `gorm:"not null;size:255" json:"product_name"`
	ProductImage   string    `gorm:"size:500" json:"product_image"`
	AttributeValue string    `gorm:"size:100" json:"attribute_value"`
	UnitPrice      int64     `gorm:"not null" json:"unit_price"` // In cents
	Quantity       int       `gorm:"not null" json:"quantity"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderLine) TableName() string { return "order_lines" }
