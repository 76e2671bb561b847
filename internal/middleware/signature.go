package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/config"
)

// WebhookSignature verifies the HMAC-SHA256 signature on inbound webhook
// calls. The signed message is "<timestamp>.<body>". An empty secret disables
// verification so local setups can post unsigned events.
func WebhookSignature(cfg config.WebhookConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Secret == "" {
				return next(c)
			}

			signature := c.Request().Header.Get(cfg.SignatureHeader)
			timestamp := c.Request().Header.Get(cfg.TimestampHeader)
			if signature == "" || timestamp == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing webhook signature"})
			}

			if cfg.TimestampTolerance > 0 {
				unix, err := strconv.ParseInt(timestamp, 10, 64)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid webhook timestamp"})
				}
				drift := time.Since(time.Unix(unix, 0))
				if drift < 0 {
					drift = -drift
				}
				if drift > cfg.TimestampTolerance {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "webhook timestamp outside tolerance"})
				}
			}

			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body"})
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(body))

			mac := hmac.New(sha256.New, []byte(cfg.Secret))
			mac.Write([]byte(timestamp))
			mac.Write([]byte("."))
			mac.Write(body)
			expected := hex.EncodeToString(mac.Sum(nil))

			if !hmac.Equal([]byte(expected), []byte(signature)) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid webhook signature"})
			}

			return next(c)
		}
	}
}
