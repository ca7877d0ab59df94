// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart is the per-session shopping cart. One cart per session id; carts
// are never deleted, only emptied.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	SessionID string     `gorm:"uniqueIndex;not null;size:64" json:"session_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one line of a cart, referencing a variant price. At most one
// item per variant price within a cart; re-adding increments quantity.
// Quantity is never persisted below 1.
type CartItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CartID         uint      `gorm:"not null;index;uniqueIndex:idx_cart_variant_price" json:"cart_id"`
	VariantPriceID uint      `gorm:"not null;uniqueIndex:idx_cart_variant_price" json:"variant_price_id"`
	Quantity       int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }
