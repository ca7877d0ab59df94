// internal/domain/catalog/entity.go
package catalog

import (
	"time"
)

// Product represents a sellable product. The base price is informational;
// cart line items always price off a VariantPrice.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:500" json:"image"`
	Price       int64     `gorm:"not null;default:0" json:"price"` // In cents
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Attributes []VariantAttribute `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attributes,omitempty"`
	Prices     []VariantPrice     `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"prices,omitempty"`
}

// VariantAttribute is a distinguishing attribute value of a product, e.g.
// Size=M. A product cannot declare the same attribute value twice.
type VariantAttribute struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProductID      uint      `gorm:"not null;index;uniqueIndex:idx_product_attribute_value" json:"product_id"`
	AttributeName  string    `gorm:"not null;size:100;uniqueIndex:idx_product_attribute_value" json:"attribute_name"`
	AttributeValue string    `gorm:"not null;size:100;uniqueIndex:idx_product_attribute_value" json:"attribute_value"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// VariantPrice carries the authoritative unit price of one product variant.
// Exactly one price per (product, attribute) pair; this is the only valid
// target for cart line items.
type VariantPrice struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"not null;index;uniqueIndex:idx_product_attribute_price" json:"product_id"`
	AttributeID uint      `gorm:"not null;uniqueIndex:idx_product_attribute_price" json:"attribute_id"`
	Price       int64     `gorm:"not null" json:"price"` // In cents
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category groups products for browsing.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryProduct links a product to a category.
type CategoryProduct struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"not null;index;uniqueIndex:idx_category_product" json:"category_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_category_product" json:"product_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Product) TableName() string          { return "products" }
func (VariantAttribute) TableName() string { return "variant_attributes" }
func (VariantPrice) TableName() string     { return "variant_prices" }
func (Category) TableName() string         { return "categories" }
func (CategoryProduct) TableName() string  { return "category_products" }
