package checkoutControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	paymentControllers "github.com/aayushmaan-54/OneStore/controllers/payment"
	"github.com/aayushmaan-54/OneStore/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.UserData{}, &models.Product{},
		&models.CartItem{}, &models.Order{}, &models.OrderItem{},
	))
	return db
}

// stubGateway runs a fake Razorpay order endpoint. When fail is true it
// answers like the real API does on a bad request.
func stubGateway(t *testing.T, fail bool) *paymentControllers.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Order amount less than minimum"}}`))
			return
		}
		var req paymentControllers.OrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(paymentControllers.GatewayOrder{
			ID:       "order_test_123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	t.Cleanup(srv.Close)
	return &paymentControllers.Client{
		BaseURL:    srv.URL,
		KeyID:      "rzp_test_key",
		KeySecret:  "secret",
		HTTPClient: srv.Client(),
	}
}

func newRouter(db *gorm.DB, gw *paymentControllers.Client, rdb *redis.Client, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/checkout", func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}, Checkout(db, gw, rdb))
	return r
}

func doCheckout(r *gin.Engine, idempotencyKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(nil))
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedUser(t *testing.T, db *gorm.DB, id, address string) models.User {
	t.Helper()
	u := models.User{ID: id, Name: "Asha", Email: id + "@example.com"}
	require.NoError(t, db.Create(&u).Error)
	if address != "" {
		require.NoError(t, db.Create(&models.UserData{UserID: id, Role: models.RoleUser, Address: address}).Error)
	}
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name: name, Slug: name, Description: "d",
		Price: decimal.RequireFromString(price), Stock: stock, IsActive: true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func addLine(t *testing.T, db *gorm.DB, userID string, productID uint, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}).Error)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user-1", "12 MG Road, Bengaluru")
	r := newRouter(db, stubGateway(t, false), nil, "user-1")

	w := doCheckout(r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cart is empty")

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestCheckoutRequiresAddress(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user-1", "")
	p := seedProduct(t, db, "mug", "9.99", 5)
	addLine(t, db, "user-1", p.ID, 1)

	r := newRouter(db, stubGateway(t, false), nil, "user-1")
	w := doCheckout(r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Shipping address required")
}

func TestCheckoutHappyPath(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user-1", "12 MG Road, Bengaluru")
	mug := seedProduct(t, db, "mug", "9.99", 5)
	pot := seedProduct(t, db, "pot", "24.50", 3)
	addLine(t, db, "user-1", mug.ID, 2)
	addLine(t, db, "user-1", pot.ID, 1)

	r := newRouter(db, stubGateway(t, false), nil, "user-1")
	w := doCheckout(r, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Key       string `json:"key"`
			OrderID   string `json:"orderId"`
			Amount    int64  `json:"amount"`
			Currency  string `json:"currency"`
			DBOrderID uint   `json:"dbOrderId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rzp_test_key", resp.Data.Key)
	assert.Equal(t, "order_test_123", resp.Data.OrderID)
	assert.EqualValues(t, 4448, resp.Data.Amount) // 2*9.99 + 24.50 in paise
	assert.Equal(t, "INR", resp.Data.Currency)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, resp.Data.DBOrderID).Error)
	assert.Equal(t, models.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(t, "order_test_123", order.GatewayOrderID)
	assert.Equal(t, "12 MG Road, Bengaluru", order.ShippingAddress)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("44.48")))
	require.Len(t, order.Items, 2)

	// stock is reserved up front
	var gotMug, gotPot models.Product
	require.NoError(t, db.First(&gotMug, mug.ID).Error)
	require.NoError(t, db.First(&gotPot, pot.ID).Error)
	assert.Equal(t, 3, gotMug.Stock)
	assert.Equal(t, 2, gotPot.Stock)

	// cart is cleared only on completion, not here
	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", "user-1").Count(&cartCount)
	assert.EqualValues(t, 2, cartCount)
}

func TestCheckoutSnapshotsPrice(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user-1", "addr")
	p := seedProduct(t, db, "mug", "9.99", 5)
	addLine(t, db, "user-1", p.ID, 1)

	r := newRouter(db, stubGateway(t, false), nil, "user-1")
	w := doCheckout(r, "")
	require.Equal(t, http.StatusOK, w.Code)

	// a later price change must not touch the order
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).
		Update("price", decimal.RequireFromString("99.99")).Error)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order).Error)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("9.99")))
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, "mug", order.Items[0].ProductName)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user-1", "addr")
	p := seedProduct(t, db, "mug", "9.99", 1)
	addLine(t, db, "user-1", p.ID, 3)

	r := newRouter(db, stubGateway(t, false), nil, "user-1")
	w := doCheckout(r, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient stock")
	assert.Contains(t, w.Body.String(), "mug")

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 1, got.Stock)
}

func TestCheckoutGatewayFailureCompensates(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user-1", "addr")
	p := seedProduct(t, db, "mug", "9.99", 5)
	addLine(t, db, "user-1", p.ID, 2)

	r := newRouter(db, stubGateway(t, true), nil, "user-1")
	w := doCheckout(r, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to create payment session")

	var order models.Order
	require.NoError(t, db.First(&order).Error)
	assert.Equal(t, models.OrderStatusFailed, order.Status)

	// reserved stock came back
	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 5, got.Stock)
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user-1", "addr")
	p := seedProduct(t, db, "mug", "9.99", 10)
	addLine(t, db, "user-1", p.ID, 1)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := newRouter(db, stubGateway(t, false), rdb, "user-1")

	w := doCheckout(r, "key-abc")
	require.Equal(t, http.StatusOK, w.Code)

	w = doCheckout(r, "key-abc")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Duplicate checkout request")

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.EqualValues(t, 1, orderCount)
}

func TestMinorUnits(t *testing.T) {
	assert.EqualValues(t, 999, minorUnits(decimal.RequireFromString("9.99")))
	assert.EqualValues(t, 5997, minorUnits(decimal.RequireFromString("19.99").Mul(decimal.NewFromInt(3))))
	assert.EqualValues(t, 100, minorUnits(decimal.NewFromInt(1)))
}
