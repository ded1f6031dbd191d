package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// RazorpayWebhookAuth verifies the webhook signature, skips check in sandbox/dev mode
func RazorpayWebhookAuth() gin.HandlerFunc {
	secretKey := os.Getenv("RAZORPAY_WEBHOOK_SECRET")
	if secretKey == "" {
		panic("RAZORPAY_WEBHOOK_SECRET is not set")
	}

	mode := strings.ToLower(os.Getenv("RAZORPAY_MODE"))

	return func(c *gin.Context) {
		if mode == "sandbox" || mode == "dev" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to read body for signature verification"})
			c.Abort()
			return
		}
		// Handler still needs the payload.
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		provided := c.GetHeader("X-Razorpay-Signature")
		if provided == "" {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "missing webhook signature"})
			c.Abort()
			return
		}

		mac := hmac.New(sha256.New, []byte(secretKey))
		mac.Write(body)
		calculated := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(calculated), []byte(strings.ToLower(provided))) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "invalid webhook signature"})
			c.Abort()
			return
		}

		c.Next()
	}
}
