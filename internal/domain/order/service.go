// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// AttributeValueFallback is snapshotted when a variant carries no
// distinguishing attribute.
const AttributeValueFallback = "Standard"

// Service converts carts into immutable orders.
type Service struct {
	db          *gorm.DB
	cartService *cart.Service
	resolver    *catalog.Resolver
	logger      *logrus.Logger

	// Serializes finalize per session so two finalizes cannot snapshot
	// the same lines. Cart mutations do not take this lock; the
	// finalizer consumes only the item ids it snapshotted, so an add
	// landing mid-finalize stays in the cart instead of being wiped.
	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is a refcounted mutex so the per-session map entry can be
// dropped once the last waiter releases it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a new order service
func NewService(db *gorm.DB, cartService *cart.Service, resolver *catalog.Resolver, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		cartService: cartService,
		resolver:    resolver,
		logger:      logger,
		locks:       make(map[string]*sessionLock),
	}
}

// FinalizeRequest represents order creation data
type FinalizeRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	SessionID     string `json:"session_id" binding:"required"`
	UserID        *uint  `json:"user_id,omitempty"`
}

// UpdateStatusRequest represents a status change
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// Finalize snapshots the session's cart into an order and clears the cart.
// Preconditions are checked in order, first failure wins: customer details,
// cart existence, cart non-emptiness. Any unresolvable line fails the whole
// call; a sale cannot proceed against a phantom price.
func (s *Service) Finalize(req *FinalizeRequest) (*Order, error) {
	if req.CustomerName == "" || req.CustomerEmail == "" {
		return nil, apperror.Validation("missing_customer_details", "customer name and email are required")
	}

	lock := s.acquireSession(req.SessionID)
	defer s.releaseSession(req.SessionID, lock)

	_, items, err := s.cartService.RawItems(req.SessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.Validation("empty_cart", "cart is empty")
	}

	lines := make([]OrderLine, len(items))
	itemIDs := make([]uint, len(items))
	var total int64
	for i, item := range items {
		itemIDs[i] = item.ID
		resolved, err := s.resolver.Resolve(item.VariantPriceID)
		if err != nil {
			if apperror.IsKind(err, apperror.KindNotFound) {
				return nil, apperror.InconsistentCart(
					fmt.Sprintf("cart references variant price %d which no longer exists", item.VariantPriceID))
			}
			return nil, err
		}
		if resolved.Product == nil {
			return nil, apperror.InconsistentCart(
				fmt.Sprintf("cart references variant price %d whose product no longer exists", item.VariantPriceID))
		}

		attributeValue := AttributeValueFallback
		if resolved.Attribute != nil {
			attributeValue = resolved.Attribute.Value
		}

		lines[i] = OrderLine{
			VariantPriceID: item.VariantPriceID,
			ProductID:      resolved.Product.ID,
			ProductName:    resolved.Product.Name,
			ProductImage:   resolved.Product.Image,
			AttributeValue: attributeValue,
			UnitPrice:      resolved.UnitPrice,
			Quantity:       item.Quantity,
		}
		total += resolved.UnitPrice * int64(item.Quantity)
	}

	order := Order{
		OrderNumber:   generateOrderNumber(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		SessionID:     req.SessionID,
		UserID:        req.UserID,
		Status:        StatusProcessing,
		TotalAmount:   total,
		Lines:         lines,
	}

	// Header and lines persist together; the order is never partially
	// visible.
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	}); err != nil {
		return nil, apperror.Store(err)
	}

	// Order creation is the durability boundary. Only the snapshotted
	// item ids are consumed, so an item added while the order persisted
	// stays in the cart. A failed removal leaves a logged inconsistency,
	// never an order failure.
	if err := s.cartService.RemoveItems(req.SessionID, itemIDs); err != nil {
		s.logger.WithFields(logrus.Fields{
			"session_id":   req.SessionID,
			"order_number": order.OrderNumber,
		}).WithError(err).Warn("failed to remove cart items after order creation")
	}

	return s.GetOrder(order.ID)
}

// GetOrder retrieves a single order with its lines.
func (s *Service) GetOrder(id uint) (*Order, error) {
	var order Order
	err := s.db.Preload("Lines").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order_not_found", "order not found")
		}
		return nil, apperror.Store(err)
	}
	return &order, nil
}

// GetOrders retrieves all orders, newest first.
func (s *Service) GetOrders() ([]Order, error) {
	var orders []Order
	err := s.db.Preload("Lines").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, apperror.Store(err)
	}
	return orders, nil
}

// GetUserOrders retrieves orders for a specific user, newest first.
func (s *Service) GetUserOrders(userID uint) ([]Order, error) {
	var orders []Order
	err := s.db.Preload("Lines").Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, apperror.Store(err)
	}
	return orders, nil
}

// UpdateStatus changes an order's status, the only mutation an order
// permits.
func (s *Service) UpdateStatus(id uint, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, apperror.Validation("invalid_status", fmt.Sprintf("unknown order status %q", status))
	}

	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(order).Update("status", status).Error; err != nil {
		return nil, apperror.Store(err)
	}
	order.Status = status
	return order, nil
}

// Delete removes an order together with its lines. Admin escape hatch
// only; nothing in the normal flow deletes orders.
func (s *Service) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Order{}, id)
		if result.Error != nil {
			return apperror.Store(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("order_not_found", "order not found")
		}
		if err := tx.Where("order_id = ?", id).Delete(&OrderLine{}).Error; err != nil {
			return apperror.Store(err)
		}
		return nil
	})
}

// Private helper methods

func (s *Service) acquireSession(sessionID string) *sessionLock {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.locks[sessionID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return lock
}

// releaseSession unlocks and drops the map entry once no finalize holds
// or awaits it, keeping the lock table bounded by in-flight sessions.
func (s *Service) releaseSession(sessionID string, lock *sessionLock) {
	lock.mu.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, sessionID)
	}
	s.mu.Unlock()
}

// generateOrderNumber builds a human-facing order number from a time
// prefix and a random suffix. Display-only, never parsed.
func generateOrderNumber() string {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())
	return fmt.Sprintf("ORD-%s-%03d", timestamp[len(timestamp)-6:], rand.Intn(1000))
}
