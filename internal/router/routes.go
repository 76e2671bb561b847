package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/auth"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/config"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/handler"
	middlewarepkg "github.com/pouyakhodadust-eng/customer-data-enrichment/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserAdminHandler
	Leads    *handler.LeadsHandler
	Webhooks *handler.WebhookHandler
	Health   *handler.HealthHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.Use(echomw.Recover())
	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())

	e.GET("/health", handlers.Health.Root)
	e.GET("/health/live", handlers.Health.Live)
	e.GET("/health/ready", handlers.Health.Ready)

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	hooks := e.Group("/webhooks", middlewarepkg.WebhookSignature(cfg.Webhook))
	hooks.POST("/lead/created", handlers.Webhooks.LeadCreated)
	hooks.POST("/lead/updated", handlers.Webhooks.LeadUpdated)
	hooks.POST("/engagement", handlers.Webhooks.Engagement)
	hooks.POST("/form/submitted", handlers.Webhooks.FormSubmitted)
	hooks.POST("/custom/:event_type", handlers.Webhooks.CustomEvent)
	hooks.POST("/batch", handlers.Webhooks.Batch)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)

	bulkLimiter := middlewarepkg.RateLimiter(cfg.RateLimitBulk, "/leads/bulk/enrich", "/leads/bulk/rescore")

	secured.GET("/leads", handlers.Leads.List)
	secured.POST("/leads", handlers.Leads.Create)
	secured.GET("/leads/stats/overview", handlers.Leads.Stats)
	secured.POST("/leads/bulk/enrich", handlers.Leads.BulkEnrich, bulkLimiter)
	secured.POST("/leads/bulk/rescore", handlers.Leads.BulkRescore, bulkLimiter)
	secured.GET("/leads/:id", handlers.Leads.Get)
	secured.PUT("/leads/:id", handlers.Leads.Update)
	secured.DELETE("/leads/:id", handlers.Leads.Delete)
	secured.POST("/leads/:id/enrich", handlers.Leads.Enrich)
	secured.GET("/leads/:id/score/history", handlers.Leads.ScoreHistory)
}
