package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/auth"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/cache"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/config"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/database"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/handler"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/provider"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/repository"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/router"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/service"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/service/enrichment"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/service/scoring"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("skipping .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer redisClient.Close()

	users := repository.NewPGXUsersRepository(pool)
	leads := repository.NewPGXLeadsRepository(pool)
	scores := repository.NewPGXScoresRepository(pool)
	events := repository.NewPGXEventsRepository(pool)

	registry := provider.NewRegistry(cfg)
	engine := scoring.NewEngine(leads, scores, cfg.Scoring)
	orchestrator := enrichment.NewOrchestrator(registry, redisClient, leads, events, cfg.RateLimitBulk)

	var automation service.AutomationPoster
	if cfg.AutomationBaseURL != "" {
		automation = service.NewAutomationClient(nil, cfg.AutomationBaseURL)
	}

	validator := service.NewLeadValidator("US")
	leadsService := service.NewLeadsService(leads, validator, engine, orchestrator, redisClient)
	webhookService := service.NewWebhookService(leads, scores, events, automation, redisClient)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(users, jwtManager)
	userService := service.NewUserService(users)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Users:    handler.NewUserAdminHandler(userService),
		Leads:    handler.NewLeadsHandler(leadsService),
		Webhooks: handler.NewWebhookHandler(webhookService),
		Health:   handler.NewHealthHandler(pool, handler.PingerFunc(redisClient.Health)),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
