package order

import (
	"io"
	"regexp"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&catalog.VariantAttribute{},
		&catalog.VariantPrice{},
		&cart.Cart{},
		&cart.CartItem{},
		&Order{},
		&OrderLine{},
	))
	return db
}

type fixture struct {
	db          *gorm.DB
	cartService *cart.Service
	service     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	resolver := catalog.NewResolver(db)
	cartService := cart.NewService(db, resolver)

	log := logrus.New()
	log.SetOutput(io.Discard)

	return &fixture{
		db:          db,
		cartService: cartService,
		service:     NewService(db, cartService, resolver, log),
	}
}

// seedVariant creates a product with one Size variant and returns the
// variant price id.
func seedVariant(t *testing.T, db *gorm.DB, name, size string, price int64) uint {
	t.Helper()
	product := catalog.Product{Name: name, Description: "test product", Image: "/images/test.jpg", Price: price}
	require.NoError(t, db.Create(&product).Error)

	attr := catalog.VariantAttribute{ProductID: product.ID, AttributeName: "Size", AttributeValue: size}
	require.NoError(t, db.Create(&attr).Error)

	vp := catalog.VariantPrice{ProductID: product.ID, AttributeID: attr.ID, Price: price}
	require.NoError(t, db.Create(&vp).Error)

	return vp.ID
}

func finalizeRequest(sessionID string) *FinalizeRequest {
	return &FinalizeRequest{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		SessionID:     sessionID,
	}
}

func TestFinalize_SnapshotsCartIntoOrder(t *testing.T) {
	f := newFixture(t)
	teeID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1000)
	jeansID := seedVariant(t, f.db, "Slim Denim Jeans", "32", 2500)

	_, err := f.cartService.AddItem("session-1", teeID, 2)
	require.NoError(t, err)
	_, err = f.cartService.AddItem("session-1", jeansID, 1)
	require.NoError(t, err)

	order, err := f.service.Finalize(finalizeRequest("session-1"))
	require.NoError(t, err)

	assert.Equal(t, StatusProcessing, order.Status)
	assert.Equal(t, "Ada Lovelace", order.CustomerName)
	assert.Equal(t, "session-1", order.SessionID)
	assert.Nil(t, order.UserID)

	// 2 x 1000 + 1 x 2500 = 4500 cents.
	assert.Equal(t, int64(4500), order.TotalAmount)

	require.Len(t, order.Lines, 2)
	byVariant := map[uint]OrderLine{}
	for _, line := range order.Lines {
		byVariant[line.VariantPriceID] = line
	}
	assert.Equal(t, "Classic Cotton Tee", byVariant[teeID].ProductName)
	assert.Equal(t, int64(1000), byVariant[teeID].UnitPrice)
	assert.Equal(t, 2, byVariant[teeID].Quantity)
	assert.Equal(t, "M", byVariant[teeID].AttributeValue)
	assert.Equal(t, int64(2500), byVariant[jeansID].UnitPrice)
}

func TestFinalize_ClearsCart(t *testing.T) {
	f := newFixture(t)
	vpID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1999)

	_, err := f.cartService.AddItem("session-1", vpID, 1)
	require.NoError(t, err)

	_, err = f.service.Finalize(finalizeRequest("session-1"))
	require.NoError(t, err)

	view, err := f.cartService.GetOrCreate("session-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestFinalize_OrderNumberShape(t *testing.T) {
	f := newFixture(t)
	vpID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1999)

	_, err := f.cartService.AddItem("session-1", vpID, 1)
	require.NoError(t, err)

	order, err := f.service.Finalize(finalizeRequest("session-1"))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{6}-\d{3}$`), order.OrderNumber)
}

func TestFinalize_MissingCustomerDetails(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Finalize(&FinalizeRequest{SessionID: "session-1"})

	require.Error(t, err)
	assert.Equal(t, "missing_customer_details", apperror.Reason(err))
}

func TestFinalize_UnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Finalize(finalizeRequest("no-such-session"))

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.Equal(t, "cart_not_found", apperror.Reason(err))
}

func TestFinalize_EmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.cartService.GetOrCreate("session-1")
	require.NoError(t, err)

	_, err = f.service.Finalize(finalizeRequest("session-1"))

	require.Error(t, err)
	assert.Equal(t, "empty_cart", apperror.Reason(err))
}

func TestFinalize_VanishedPriceFailsWholeOrder(t *testing.T) {
	f := newFixture(t)
	teeID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1000)
	jeansID := seedVariant(t, f.db, "Slim Denim Jeans", "32", 2500)

	_, err := f.cartService.AddItem("session-1", teeID, 1)
	require.NoError(t, err)
	_, err = f.cartService.AddItem("session-1", jeansID, 1)
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&catalog.VariantPrice{}, teeID).Error)

	_, err = f.service.Finalize(finalizeRequest("session-1"))

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInconsistentCart))
	assert.Equal(t, "inconsistent_cart", apperror.Reason(err))

	// No partial order, and the cart is untouched.
	var orderCount int64
	require.NoError(t, f.db.Model(&Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	var lineCount int64
	require.NoError(t, f.db.Model(&OrderLine{}).Count(&lineCount).Error)
	assert.Zero(t, lineCount)

	view, err := f.cartService.GetOrCreate("session-1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
}

func TestFinalize_VanishedProductFailsWholeOrder(t *testing.T) {
	f := newFixture(t)
	vpID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1999)

	_, err := f.cartService.AddItem("session-1", vpID, 1)
	require.NoError(t, err)

	require.NoError(t, f.db.Where("name = ?", "Classic Cotton Tee").Delete(&catalog.Product{}).Error)

	_, err = f.service.Finalize(finalizeRequest("session-1"))

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInconsistentCart))
}

func TestFinalize_AttributeFallbackValue(t *testing.T) {
	f := newFixture(t)
	vpID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1999)

	_, err := f.cartService.AddItem("session-1", vpID, 1)
	require.NoError(t, err)

	// Attribute row vanishes but price and product survive.
	require.NoError(t, f.db.Where("attribute_value = ?", "M").Delete(&catalog.VariantAttribute{}).Error)

	order, err := f.service.Finalize(finalizeRequest("session-1"))
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	assert.Equal(t, AttributeValueFallback, order.Lines[0].AttributeValue)
}

func TestOrder_SnapshotImmuneToCatalogChanges(t *testing.T) {
	f := newFixture(t)
	vpID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1000)

	_, err := f.cartService.AddItem("session-1", vpID, 2)
	require.NoError(t, err)

	created, err := f.service.Finalize(finalizeRequest("session-1"))
	require.NoError(t, err)

	// Reprice and rename after the sale.
	require.NoError(t, f.db.Model(&catalog.VariantPrice{}).Where("id = ?", vpID).Update("price", 9999).Error)
	require.NoError(t, f.db.Model(&catalog.Product{}).Where("name = ?", "Classic Cotton Tee").Update("name", "Renamed").Error)

	got, err := f.service.GetOrder(created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.TotalAmount)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Classic Cotton Tee", got.Lines[0].ProductName)
	assert.Equal(t, int64(1000), got.Lines[0].UnitPrice)
}

func TestFinalize_AddLandingMidFinalizeSurvives(t *testing.T) {
	f := newFixture(t)
	teeID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1000)
	jeansID := seedVariant(t, f.db, "Slim Denim Jeans", "32", 2500)

	_, err := f.cartService.AddItem("session-1", teeID, 1)
	require.NoError(t, err)

	// Inject an add between the order insert and the cart consumption:
	// the moment the order row persists, a new item lands in the same
	// session's cart on the same transaction.
	var hookErr error
	fired := false
	err = f.db.Callback().Create().After("gorm:create").Register("late_cart_add", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "orders" {
			return
		}
		fired = true

		session := tx.Session(&gorm.Session{NewDB: true})
		var c cart.Cart
		if err := session.Where("session_id = ?", "session-1").First(&c).Error; err != nil {
			hookErr = err
			return
		}
		hookErr = session.Create(&cart.CartItem{
			CartID:         c.ID,
			VariantPriceID: jeansID,
			Quantity:       1,
		}).Error
	})
	require.NoError(t, err)

	created, err := f.service.Finalize(finalizeRequest("session-1"))
	require.NoError(t, err)
	require.NoError(t, hookErr)
	require.True(t, fired)

	// The order carries only the snapshotted line.
	require.Len(t, created.Lines, 1)
	assert.Equal(t, teeID, created.Lines[0].VariantPriceID)
	assert.Equal(t, int64(1000), created.TotalAmount)

	// The late add is still in the cart, not wiped by the consumption.
	view, err := f.cartService.GetOrCreate("session-1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, jeansID, view.Items[0].VariantPriceID)
}

func TestFinalize_ReleasesSessionLock(t *testing.T) {
	f := newFixture(t)
	vpID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1999)

	_, err := f.cartService.AddItem("session-1", vpID, 1)
	require.NoError(t, err)

	_, err = f.service.Finalize(finalizeRequest("session-1"))
	require.NoError(t, err)
	assert.Empty(t, f.service.locks)

	// Error paths release too.
	_, err = f.service.Finalize(finalizeRequest("session-1"))
	require.Error(t, err)
	assert.Equal(t, "empty_cart", apperror.Reason(err))
	assert.Empty(t, f.service.locks)
}

func TestDelete_RemovesOrderAndLines(t *testing.T) {
	f := newFixture(t)
	vpID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1999)

	_, err := f.cartService.AddItem("session-1", vpID, 1)
	require.NoError(t, err)
	created, err := f.service.Finalize(finalizeRequest("session-1"))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(created.ID))

	_, err = f.service.GetOrder(created.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	var lineCount int64
	require.NoError(t, f.db.Model(&OrderLine{}).Where("order_id = ?", created.ID).Count(&lineCount).Error)
	assert.Zero(t, lineCount)
}

func TestDelete_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	err := f.service.Delete(42)

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetOrder(42)

	require.Error(t, err)
	assert.Equal(t, "order_not_found", apperror.Reason(err))
}

func TestGetUserOrders_FiltersByUser(t *testing.T) {
	f := newFixture(t)
	vpID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1999)

	userID := uint(7)

	_, err := f.cartService.AddItem("session-1", vpID, 1)
	require.NoError(t, err)
	req := finalizeRequest("session-1")
	req.UserID = &userID
	_, err = f.service.Finalize(req)
	require.NoError(t, err)

	_, err = f.cartService.AddItem("session-2", vpID, 1)
	require.NoError(t, err)
	_, err = f.service.Finalize(finalizeRequest("session-2"))
	require.NoError(t, err)

	mine, err := f.service.GetUserOrders(userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "session-1", mine[0].SessionID)

	all, err := f.service.GetOrders()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	vpID := seedVariant(t, f.db, "Classic Cotton Tee", "M", 1999)

	_, err := f.cartService.AddItem("session-1", vpID, 1)
	require.NoError(t, err)
	created, err := f.service.Finalize(finalizeRequest("session-1"))
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus(created.ID, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, updated.Status)

	got, err := f.service.GetOrder(created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got.Status)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.UpdateStatus(1, Status("Teleported"))

	require.Error(t, err)
	assert.Equal(t, "invalid_status", apperror.Reason(err))
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.UpdateStatus(42, StatusShipped)

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
