package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCartRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	))

	handler := NewCartHandler(db)

	router := gin.New()
	group := router.Group("/api/v1/cart/:sessionId")
	group.GET("", handler.GetCart)
	group.POST("/items", handler.AddItem)
	group.PUT("/items/:itemId", handler.UpdateItem)
	group.DELETE("/items/:itemId", handler.RemoveItem)
	group.DELETE("", handler.ClearCart)

	return router, db
}

func seedCartVariant(t *testing.T, db *gorm.DB, name string, price int64) uint {
	t.Helper()
	product := catalog.Product{Name: name, Description: "test product", Image: "/images/test.jpg", Price: price}
	require.NoError(t, db.Create(&product).Error)

	attr := catalog.VariantAttribute{ProductID: product.ID, AttributeName: "Size", AttributeValue: "M"}
	require.NoError(t, db.Create(&attr).Error)

	vp := catalog.VariantPrice{ProductID: product.ID, AttributeID: attr.ID, Price: price}
	require.NoError(t, db.Create(&vp).Error)

	return vp.ID
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCartEndpoints_GetCreatesEmptyCart(t *testing.T) {
	router, _ := setupCartRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/cart/session-1", "")

	require.Equal(t, http.StatusOK, resp.Code)

	var view cart.View
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	assert.Equal(t, "session-1", view.SessionID)
	assert.Empty(t, view.Items)
}

func TestCartEndpoints_AddItemReturnsResolvedCart(t *testing.T) {
	router, db := setupCartRouter(t)
	vpID := seedCartVariant(t, db, "Classic Cotton Tee", 1999)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/session-1/items",
		`{"variant_price_id": `+jsonUint(vpID)+`, "quantity": 2}`)

	require.Equal(t, http.StatusCreated, resp.Code)

	var view cart.View
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(3998), view.Total)
	require.NotNil(t, view.Items[0].Product)
	assert.Equal(t, "Classic Cotton Tee", view.Items[0].Product.Name)
}

func TestCartEndpoints_AddUnknownVariantIs400(t *testing.T) {
	router, _ := setupCartRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/session-1/items",
		`{"variant_price_id": 9999, "quantity": 1}`)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "invalid_reference", body["error"])
}

func TestCartEndpoints_UpdateUnknownItemIs404(t *testing.T) {
	router, _ := setupCartRouter(t)

	// Cart exists but the item does not.
	doJSON(t, router, http.MethodGet, "/api/v1/cart/session-1", "")

	resp := doJSON(t, router, http.MethodPut, "/api/v1/cart/session-1/items/9999",
		`{"quantity": 3}`)

	require.Equal(t, http.StatusNotFound, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "item_not_found", body["error"])
}

func TestCartEndpoints_UpdateWithoutCartIs404(t *testing.T) {
	router, _ := setupCartRouter(t)

	resp := doJSON(t, router, http.MethodPut, "/api/v1/cart/no-such-session/items/1",
		`{"quantity": 3}`)

	require.Equal(t, http.StatusNotFound, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "cart_not_found", body["error"])
}

func TestCartEndpoints_MalformedItemIDIs400(t *testing.T) {
	router, _ := setupCartRouter(t)

	doJSON(t, router, http.MethodGet, "/api/v1/cart/session-1", "")

	resp := doJSON(t, router, http.MethodDelete, "/api/v1/cart/session-1/items/not-a-number", "")

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "invalid_id", body["error"])
}

func TestCartEndpoints_UpdateQuantityZeroIs400InvalidQuantity(t *testing.T) {
	router, db := setupCartRouter(t)
	vpID := seedCartVariant(t, db, "Classic Cotton Tee", 1999)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/session-1/items",
		`{"variant_price_id": `+jsonUint(vpID)+`, "quantity": 1}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	var view cart.View
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)

	// Zero must reach the service and come back as invalid_quantity, not
	// get swallowed by request binding.
	resp = doJSON(t, router, http.MethodPut,
		"/api/v1/cart/session-1/items/"+jsonUint(view.Items[0].ItemID),
		`{"quantity": 0}`)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "invalid_quantity", body["error"])
}

func TestCartEndpoints_RemoveAndClear(t *testing.T) {
	router, db := setupCartRouter(t)
	vpID := seedCartVariant(t, db, "Classic Cotton Tee", 1999)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/cart/session-1/items",
		`{"variant_price_id": `+jsonUint(vpID)+`, "quantity": 1}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	var view cart.View
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/cart/session-1", "")
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Total)
}

func jsonUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
