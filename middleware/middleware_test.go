package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aayushmaan-54/OneStore/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.UserData{}))
	return db
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", ValidateToken, func(c *gin.Context) {
		uid, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": uid})
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authorization header is missing")
	})

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, "test-secret", jwt.MapClaims{"user_id": "user-1"})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user-1")
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{"user_id": "user-1"})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing user_id claim", func(t *testing.T) {
		token := signToken(t, "test-secret", jwt.MapClaims{"sub": "someone"})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{ID: "admin-1", Name: "A", Email: "a@example.com"}).Error)
	require.NoError(t, db.Create(&models.UserData{UserID: "admin-1", Role: models.RoleAdmin}).Error)
	require.NoError(t, db.Create(&models.User{ID: "user-1", Name: "U", Email: "u@example.com"}).Error)
	require.NoError(t, db.Create(&models.UserData{UserID: "user-1", Role: models.RoleUser}).Error)

	newRouter := func(userID string) *gin.Engine {
		r := gin.New()
		r.GET("/admin", func(c *gin.Context) {
			if userID != "" {
				c.Set("user_id", userID)
			}
			c.Next()
		}, RequireAdmin(db), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		return r
	}

	do := func(r *gin.Engine) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do(newRouter("admin-1")).Code)
	assert.Equal(t, http.StatusForbidden, do(newRouter("user-1")).Code)
	// no UserData row at all
	assert.Equal(t, http.StatusForbidden, do(newRouter("ghost")).Code)
	assert.Equal(t, http.StatusUnauthorized, do(newRouter("")).Code)
}

func TestRazorpayWebhookAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("RAZORPAY_MODE", "")

	r := gin.New()
	r.POST("/webhook", RazorpayWebhookAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	body := []byte(`{"event":"payment.captured"}`)
	mac := hmac.New(sha256.New, []byte("whsec"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	t.Run("valid signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
		req.Header.Set("X-Razorpay-Signature", signature)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("tampered body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{"event":"payment.failed"}`)))
		req.Header.Set("X-Razorpay-Signature", signature)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRazorpayWebhookAuthSandboxSkip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("RAZORPAY_MODE", "sandbox")

	r := gin.New()
	r.POST("/webhook", RazorpayWebhookAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
