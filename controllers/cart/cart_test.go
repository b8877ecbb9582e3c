package cartControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Adeleye080/DShop/middleware"
	"github.com/Adeleye080/DShop/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Cart{}, &models.CartItem{},
	))
	return db
}

// cartRouter injects a fixed user so the handlers see an authenticated
// request without the full token round-trip.
func cartRouter(db *gorm.DB, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, user)
		c.Set(middleware.ContextUserIDKey, user.ID)
	})
	r.GET("/cart", GetCart(db))
	r.POST("/cart/items", AddToCart(db))
	r.PUT("/cart/items", UpdateCartItem(db))
	r.DELETE("/cart/items", RemoveFromCart(db))
	return r
}

func seedCartFixtures(t *testing.T, db *gorm.DB) (*models.User, *models.Product) {
	t.Helper()
	user := &models.User{Email: "cart@example.com", HashedPassword: "x"}
	require.NoError(t, db.Create(user).Error)
	product := &models.Product{
		Name:  "Widget",
		Price: decimal.RequireFromString("10.00"),
		Stock: 5,
	}
	require.NoError(t, db.Create(product).Error)
	return user, product
}

func jsonReq(method, path string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGetCartCreatesLazily(t *testing.T) {
	db := newTestDB(t)
	user, _ := seedCartFixtures(t, db)
	r := cartRouter(db, user)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var carts int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&carts).Error)
	assert.Equal(t, int64(1), carts)
}

func TestAddToCartAggregatesDuplicateProduct(t *testing.T) {
	db := newTestDB(t)
	user, product := seedCartFixtures(t, db)
	r := cartRouter(db, user)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonReq(http.MethodPost, "/cart/items",
			gin.H{"product_id": product.ID, "quantity": 2}))
		require.Equal(t, http.StatusOK, w.Code)
	}

	// One line, quantity 4, not two lines.
	var items []models.CartItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	user, _ := seedCartFixtures(t, db)
	r := cartRouter(db, user)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonReq(http.MethodPost, "/cart/items",
		gin.H{"product_id": 999, "quantity": 1}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCartItemSetsQuantity(t *testing.T) {
	db := newTestDB(t)
	user, product := seedCartFixtures(t, db)
	r := cartRouter(db, user)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonReq(http.MethodPost, "/cart/items",
		gin.H{"product_id": product.ID, "quantity": 3}))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonReq(http.MethodPut, "/cart/items",
		gin.H{"product_id": product.ID, "quantity": 1}))
	require.Equal(t, http.StatusOK, w.Code)

	var item models.CartItem
	require.NoError(t, db.First(&item).Error)
	assert.Equal(t, 1, item.Quantity)
}

func TestRemoveFromCart(t *testing.T) {
	db := newTestDB(t)
	user, product := seedCartFixtures(t, db)
	r := cartRouter(db, user)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonReq(http.MethodPost, "/cart/items",
		gin.H{"product_id": product.ID, "quantity": 1}))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonReq(http.MethodDelete, "/cart/items",
		gin.H{"product_id": product.ID}))
	assert.Equal(t, http.StatusOK, w.Code)

	var items int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&items).Error)
	assert.Zero(t, items)

	// Removing again reports the missing line.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonReq(http.MethodDelete, "/cart/items",
		gin.H{"product_id": product.ID}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
