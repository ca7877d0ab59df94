// internal/domain/catalog/resolver.go
package catalog

import (
	"errors"

	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// ProductSummary is the display slice of a product carried on resolved
// cart lines and order snapshots.
type ProductSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// AttributeSummary is the display slice of a variant attribute.
type AttributeSummary struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ResolvedPrice is the result of joining a variant price to its product and
// attribute. Product or Attribute may be nil when the referenced row has
// been deleted; the unit price is still authoritative.
type ResolvedPrice struct {
	VariantPriceID uint              `json:"variant_price_id"`
	UnitPrice      int64             `json:"unit_price"`
	Product        *ProductSummary   `json:"product"`
	Attribute      *AttributeSummary `json:"attribute"`
}

// Resolver turns variant-price references into priced display data. Pure
// read, no caching.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a price resolver over the catalog store.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve looks up a variant price by id and joins its product and
// attribute metadata. Returns a not-found error only when the variant
// price row itself is absent; missing product or attribute rows degrade
// to nil summaries so a deleted product cannot corrupt a cart listing.
func (r *Resolver) Resolve(variantPriceID uint) (*ResolvedPrice, error) {
	var vp VariantPrice
	if err := r.db.First(&vp, variantPriceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("variant_price_not_found", "variant price not found")
		}
		return nil, apperror.Store(err)
	}

	resolved := &ResolvedPrice{
		VariantPriceID: vp.ID,
		UnitPrice:      vp.Price,
	}

	var prod Product
	if err := r.db.First(&prod, vp.ProductID).Error; err == nil {
		resolved.Product = &ProductSummary{
			ID:    prod.ID,
			Name:  prod.Name,
			Image: prod.Image,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Store(err)
	}

	var attr VariantAttribute
	if err := r.db.First(&attr, vp.AttributeID).Error; err == nil {
		resolved.Attribute = &AttributeSummary{
			Name:  attr.AttributeName,
			Value: attr.AttributeValue,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Store(err)
	}

	return resolved, nil
}

// Exists reports whether a variant price row exists.
func (r *Resolver) Exists(variantPriceID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&VariantPrice{}).Where("id = ?", variantPriceID).Count(&count).Error; err != nil {
		return false, apperror.Store(err)
	}
	return count > 0, nil
}
