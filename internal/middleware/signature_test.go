package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/config"
)

func signPayload(secret, timestamp, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s.%s", timestamp, body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookSignature(t *testing.T) {
	cfg := config.WebhookConfig{
		Secret:             "hook-secret",
		SignatureHeader:    "X-Webhook-Signature",
		TimestampHeader:    "X-Webhook-Timestamp",
		TimestampTolerance: 5 * time.Minute,
	}
	mw := WebhookSignature(cfg)
	e := echo.New()

	body := `{"lead":{"email":"jane@acme.io"}}`
	next := func(c echo.Context) error {
		// the handler must still see the full body after verification
		buf := make([]byte, len(body))
		if _, err := c.Request().Body.Read(buf); err != nil && err.Error() != "EOF" {
			t.Fatalf("body not replayable: %v", err)
		}
		if string(buf) != body {
			t.Fatalf("body mangled: %q", buf)
		}
		return c.NoContent(http.StatusOK)
	}

	t.Run("valid signature", func(t *testing.T) {
		ts := fmt.Sprintf("%d", time.Now().Unix())
		req := httptest.NewRequest(http.MethodPost, "/webhooks/lead/created", strings.NewReader(body))
		req.Header.Set(cfg.SignatureHeader, signPayload(cfg.Secret, ts, body))
		req.Header.Set(cfg.TimestampHeader, ts)
		rec := httptest.NewRecorder()

		if err := mw(next)(e.NewContext(req, rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		ts := fmt.Sprintf("%d", time.Now().Unix())
		req := httptest.NewRequest(http.MethodPost, "/webhooks/lead/created", strings.NewReader(`{"lead":{}}`))
		req.Header.Set(cfg.SignatureHeader, signPayload(cfg.Secret, ts, body))
		req.Header.Set(cfg.TimestampHeader, ts)
		rec := httptest.NewRecorder()

		_ = mw(next)(e.NewContext(req, rec))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/lead/created", strings.NewReader(body))
		rec := httptest.NewRecorder()

		_ = mw(next)(e.NewContext(req, rec))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		ts := fmt.Sprintf("%d", time.Now().Add(-time.Hour).Unix())
		req := httptest.NewRequest(http.MethodPost, "/webhooks/lead/created", strings.NewReader(body))
		req.Header.Set(cfg.SignatureHeader, signPayload(cfg.Secret, ts, body))
		req.Header.Set(cfg.TimestampHeader, ts)
		rec := httptest.NewRecorder()

		_ = mw(next)(e.NewContext(req, rec))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("disabled without secret", func(t *testing.T) {
		open := WebhookSignature(config.WebhookConfig{})
		req := httptest.NewRequest(http.MethodPost, "/webhooks/lead/created", strings.NewReader(body))
		rec := httptest.NewRecorder()

		if err := open(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(e.NewContext(req, rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected passthrough, got %d", rec.Code)
		}
	})
}
