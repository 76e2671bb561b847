package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

// Ping calls the wrapped function.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler constructs a HealthHandler. Either dependency may be nil
// when it is not part of the deployment.
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Root handles GET /health requests.
func (h *HealthHandler) Root(c echo.Context) error {
	return Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
}

// Live handles GET /health/live requests.
func (h *HealthHandler) Live(c echo.Context) error {
	return Success(c, http.StatusOK, "service alive", map[string]any{"status": "alive"})
}

// Ready handles GET /health/ready requests. It reports 503 until both the
// database and the cache answer pings.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	checks := map[string]string{}
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
			healthy = false
		} else {
			checks["cache"] = "ok"
		}
	}

	if !healthy {
		return Error(c, http.StatusServiceUnavailable, "dependencies unavailable")
	}
	return Success(c, http.StatusOK, "service ready", checks)
}
