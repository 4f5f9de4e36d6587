package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fenway-events/eventhub-api/api/swagger"
	"github.com/fenway-events/eventhub-api/internal/completion"
	"github.com/fenway-events/eventhub-api/internal/handler"
	"github.com/fenway-events/eventhub-api/internal/middleware"
	"github.com/fenway-events/eventhub-api/internal/models"
	"github.com/fenway-events/eventhub-api/internal/repository"
	"github.com/fenway-events/eventhub-api/internal/service"
	"github.com/fenway-events/eventhub-api/pkg/cache"
	"github.com/fenway-events/eventhub-api/pkg/config"
	"github.com/fenway-events/eventhub-api/pkg/database"
	"github.com/fenway-events/eventhub-api/pkg/export"
	"github.com/fenway-events/eventhub-api/pkg/logger"
	corsmiddleware "github.com/fenway-events/eventhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fenway-events/eventhub-api/pkg/middleware/requestid"
	"github.com/fenway-events/eventhub-api/pkg/storage"
)

// @title EventHub API
// @version 1.0.0
// @description Event discovery and ticketing API with natural-language search
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and rate limits disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:              cfg.JWT.Secret,
		Expiration:          cfg.JWT.Expiration,
		AdminSignupPassword: cfg.JWT.AdminSignupPassword,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	eventSvc := service.NewEventService(eventRepo, cacheRepo, validate, logr, cfg.Events.DetailCacheTTL)
	ticketSvc := service.NewTicketService(ticketRepo, eventRepo, export.NewPDFExporter(), logr)
	reportSvc := service.NewReportService(reportRepo, ticketRepo, eventRepo, logr)
	metricsSvc := service.NewMetricsService()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var chatbotSvc *service.ChatbotService
	if cfg.Chatbot.Enabled {
		client := completion.NewClient(cfg.Completion)
		chatbotSvc = service.NewChatbotService(client, eventSvc, logr, cfg.Chatbot.DefaultLocation)
	}

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(ticketRepo, eventRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
			Workers:   cfg.Exports.WorkerConcurrency,
		}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()

		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					exportSvc.Cleanup()
				}
			}
		}()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc, authSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	ticketHandler := handler.NewTicketHandler(ticketSvc, reportSvc)
	adminHandler := handler.NewAdminHandler(userSvc, eventSvc, reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	if chatbotSvc != nil {
		api.POST("/chatbot/suggest-events", handler.NewChatbotHandler(chatbotSvc).SuggestEvents)
	}

	events := api.Group("/events")
	{
		events.GET("/filter", eventHandler.Filter)
		events.GET("/mine", middleware.JWT(authSvc), eventHandler.ListMine)
		events.GET("/:id", eventHandler.Get)
		events.POST("",
			middleware.JWT(authSvc),
			middleware.RateLimit(redisClient, logr, "create-event", cfg.Events.CreateRateLimit, cfg.Events.CreateRateWindow),
			eventHandler.Create)
		events.PUT("/:id", middleware.JWT(authSvc), eventHandler.Update)
		events.DELETE("/:id", middleware.JWT(authSvc), eventHandler.Delete)
		events.POST("/:id/register", middleware.JWT(authSvc), ticketHandler.Register)
		events.DELETE("/:id/register", middleware.JWT(authSvc), ticketHandler.Cancel)
		events.POST("/:id/report", middleware.JWT(authSvc), ticketHandler.Report)
	}

	users := api.Group("/users", middleware.JWT(authSvc))
	{
		users.GET("/me", userHandler.Me)
		users.PUT("/me", userHandler.UpdateMe)
		users.PUT("/me/password", userHandler.ChangePassword)
		users.DELETE("/me", userHandler.DeactivateMe)
	}

	tickets := api.Group("/tickets", middleware.JWT(authSvc))
	{
		tickets.GET("", ticketHandler.ListMine)
		tickets.GET("/:id/pass", ticketHandler.Pass)
	}

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		events.POST("/:id/export", middleware.JWT(authSvc), exportHandler.Request)
		exports := api.Group("/exports")
		exports.GET("/download/:token", exportHandler.Download)
		exports.GET("/:id", middleware.JWT(authSvc), exportHandler.Status)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.DELETE("/users/:id", adminHandler.DeactivateUser)
		admin.GET("/events", adminHandler.ListEvents)
		admin.GET("/reports", adminHandler.ListReports)
		admin.POST("/reports/:id/resolve", adminHandler.ResolveReport)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
}
