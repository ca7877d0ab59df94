// internal/domain/cart/service.go
package cart

import (
	"errors"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns per-session cart state. Every operation re-resolves prices
// through the catalog resolver and returns the fully populated cart.
//
// Mutations are last-write-wins per cart: no concurrency token is exposed,
// so two concurrent adds on the same session may drop one increment. A
// session belongs to one browsing client in practice.
type Service struct {
	db       *gorm.DB
	resolver *catalog.Resolver
}

// NewService creates a new cart service
func NewService(db *gorm.DB, resolver *catalog.Resolver) *Service {
	return &Service{
		db:       db,
		resolver: resolver,
	}
}

// AddItemRequest represents add-to-cart request data
type AddItemRequest struct {
	VariantPriceID uint `json:"variant_price_id" binding:"required"`
	Quantity       int  `json:"quantity"`
}

// UpdateItemRequest represents item quantity update data. No binding
// floor on Quantity: the service rejects anything below 1 with a single
// machine-stable reason.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// ItemView is one cart line joined through the price resolver. Product and
// Attribute are nil and UnitPrice zero when the referenced variant price no
// longer resolves; the line stays visible with its quantity intact.
type ItemView struct {
	ItemID         uint                      `json:"item_id"`
	VariantPriceID uint                      `json:"variant_price_id"`
	Product        *catalog.ProductSummary   `json:"product"`
	Attribute      *catalog.AttributeSummary `json:"attribute"`
	UnitPrice      int64                     `json:"unit_price"`
	Quantity       int                       `json:"quantity"`
}

// View is a fully resolved cart with its derived total in cents.
type View struct {
	SessionID string     `json:"session_id"`
	Items     []ItemView `json:"items"`
	Total     int64      `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GetOrCreate returns the cart for a session, creating an empty one if the
// session has none. A losing concurrent creation is resolved as a fetch of
// the winner's cart via the session-id unique index.
func (s *Service) GetOrCreate(sessionID string) (*View, error) {
	cart, err := s.getOrCreateCart(sessionID)
	if err != nil {
		return nil, err
	}
	return s.resolveCart(cart)
}

// AddItem adds a variant price to the session's cart, creating the cart on
// first use. Adding a variant already in the cart increments its quantity.
// Unlike the read path, an unresolvable variant price is a hard failure
// here: it represents a client error, not stale data.
func (s *Service) AddItem(sessionID string, variantPriceID uint, quantity int) (*View, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperror.Validation("invalid_quantity", "quantity must be at least 1")
	}

	exists, err := s.resolver.Exists(variantPriceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.Validation("invalid_reference", "variant price does not exist")
	}

	cart, err := s.getOrCreateCart(sessionID)
	if err != nil {
		return nil, err
	}

	var item CartItem
	result := s.db.Where("cart_id = ? AND variant_price_id = ?", cart.ID, variantPriceID).First(&item)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.Store(result.Error)
		}
		item = CartItem{
			CartID:         cart.ID,
			VariantPriceID: variantPriceID,
			Quantity:       quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, apperror.Store(err)
		}
	} else {
		item.Quantity += quantity
		if err := s.db.Save(&item).Error; err != nil {
			return nil, apperror.Store(err)
		}
	}

	return s.GetOrCreate(sessionID)
}

// SetItemQuantity sets the quantity of a cart item. Quantities below 1 are
// rejected; removal is only via RemoveItem.
func (s *Service) SetItemQuantity(sessionID string, itemID uint, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, apperror.Validation("invalid_quantity", "quantity must be at least 1")
	}

	cart, err := s.findCart(sessionID)
	if err != nil {
		return nil, err
	}

	result := s.db.Model(&CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cart.ID).
		Update("quantity", quantity)
	if result.Error != nil {
		return nil, apperror.Store(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFound("item_not_found", "item not found in cart")
	}

	return s.resolveCart(cart)
}

// RemoveItem deletes a cart item by id.
func (s *Service) RemoveItem(sessionID string, itemID uint) (*View, error) {
	cart, err := s.findCart(sessionID)
	if err != nil {
		return nil, err
	}

	result := s.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, apperror.Store(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFound("item_not_found", "item not found in cart")
	}

	return s.resolveCart(cart)
}

// Clear empties all items from the session's cart. The cart row itself is
// kept.
func (s *Service) Clear(sessionID string) (*View, error) {
	cart, err := s.findCart(sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
		return nil, apperror.Store(err)
	}

	return s.resolveCart(cart)
}

// RemoveItems deletes the given item ids from the session's cart. Items
// not in the list are untouched, so a line added after the ids were
// captured survives. Deleting an already-gone id is not an error.
func (s *Service) RemoveItems(sessionID string, itemIDs []uint) error {
	if len(itemIDs) == 0 {
		return nil
	}

	cart, err := s.findCart(sessionID)
	if err != nil {
		return err
	}

	err = s.db.Where("cart_id = ? AND id IN ?", cart.ID, itemIDs).Delete(&CartItem{}).Error
	if err != nil {
		return apperror.Store(err)
	}
	return nil
}

// ListAll returns every cart, resolved. Admin surface only.
func (s *Service) ListAll() ([]View, error) {
	var carts []Cart
	if err := s.db.Order("id").Find(&carts).Error; err != nil {
		return nil, apperror.Store(err)
	}

	views := make([]View, len(carts))
	for i := range carts {
		view, err := s.resolveCart(&carts[i])
		if err != nil {
			return nil, err
		}
		views[i] = *view
	}
	return views, nil
}

// RawItems returns the unresolved item rows of a session's cart. Used by
// the order finalizer, which applies its own stricter resolution.
func (s *Service) RawItems(sessionID string) (*Cart, []CartItem, error) {
	cart, err := s.findCart(sessionID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.loadItems(cart.ID)
	if err != nil {
		return nil, nil, err
	}
	return cart, items, nil
}

// Private helper methods

func (s *Service) findCart(sessionID string) (*Cart, error) {
	var cart Cart
	err := s.db.Where("session_id = ?", sessionID).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("cart_not_found", "cart not found")
		}
		return nil, apperror.Store(err)
	}
	return &cart, nil
}

func (s *Service) getOrCreateCart(sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, apperror.Validation("invalid_session", "session id is required")
	}

	cart := Cart{SessionID: sessionID}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(&cart).Error
	if err != nil {
		return nil, apperror.Store(err)
	}

	// Re-fetch so a lost creation race still yields the winner's cart.
	return s.findCart(sessionID)
}

func (s *Service) loadItems(cartID uint) ([]CartItem, error) {
	var items []CartItem
	if err := s.db.Where("cart_id = ?", cartID).Order("id").Find(&items).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return items, nil
}

// resolveCart joins every item through the price resolver and derives the
// total over successfully resolved items. Vanished variant prices
// contribute zero but remain listed.
func (s *Service) resolveCart(cart *Cart) (*View, error) {
	items, err := s.loadItems(cart.ID)
	if err != nil {
		return nil, err
	}

	views := make([]ItemView, len(items))
	var total int64
	for i, item := range items {
		views[i] = ItemView{
			ItemID:         item.ID,
			VariantPriceID: item.VariantPriceID,
			Quantity:       item.Quantity,
		}

		resolved, err := s.resolver.Resolve(item.VariantPriceID)
		if err != nil {
			if apperror.IsKind(err, apperror.KindNotFound) {
				continue
			}
			return nil, err
		}

		views[i].Product = resolved.Product
		views[i].Attribute = resolved.Attribute
		views[i].UnitPrice = resolved.UnitPrice
		total += resolved.UnitPrice * int64(item.Quantity)
	}

	return &View{
		SessionID: cart.SessionID,
		Items:     views,
		Total:     total,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}, nil
}
