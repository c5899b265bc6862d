// File: bengkelbot/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bengkelbot/config"
	"bengkelbot/cron"
	"bengkelbot/database"
	bookingRepoPkg "bengkelbot/database/repository/booking"
	catalogRepoPkg "bengkelbot/database/repository/catalog"
	conversationRepoPkg "bengkelbot/database/repository/conversation"
	settingsRepoPkg "bengkelbot/database/repository/settings"
	"bengkelbot/handlers"
	"bengkelbot/middleware"
	"bengkelbot/routes"
	"bengkelbot/services/agent"
	"bengkelbot/services/bot"
	"bengkelbot/services/catalog"
	"bengkelbot/services/schedule"
	"bengkelbot/services/tasks"
	"bengkelbot/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCatalogCache()
	utils.InitPrefsCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	conversationRepo := conversationRepoPkg.NewMongoConversationRepo()
	settingsRepo := settingsRepoPkg.NewMongoSettingsRepo()
	catalogRepo := catalogRepoPkg.NewMongoCatalogRepo()

	// services.
	catalogService := catalog.NewDefaultCatalogService(catalogRepo, utils.GetCatalogCacheClient(), logger)
	reminderScheduler := tasks.NewReminderScheduler(logger)
	defer reminderScheduler.Close()

	engine := &schedule.DefaultSchedulingEngine{
		Repo: bookingRepo,
		Limits: schedule.Limits{
			RepaintConcurrent: config.AppConfig.RepaintConcurrentLimit,
			RepaintWindowDays: config.AppConfig.RepaintWindowDays,
			DetailingPerDay:   config.AppConfig.DetailingDailyLimit,
			ClosingHour:       config.AppConfig.ClosingHour,
			ScanHorizonDays:   config.AppConfig.ScanHorizonDays,
		},
		Reminders: reminderScheduler,
		Logger:    logger,
	}

	transport := bot.NewGatewayTransport(config.AppConfig.GatewayURL, config.AppConfig.GatewayToken, logger)
	prefsStore := bot.NewPrefsStore(utils.GetPrefsCacheClient(), logger)

	provider := agent.NewGeminiProvider()
	defer provider.Close()
	chain := agent.NewFallbackChain(
		provider,
		config.GeminiKeys(),
		config.AppConfig.GeminiPrimaryModel,
		config.AppConfig.GeminiFallbackModel,
		time.Duration(config.AppConfig.GeminiTimeoutSecs)*time.Second,
		logger,
	)
	registry := agent.NewRegistry(bot.BuildToolset(bot.ToolsetDeps{
		Catalog:  catalogService,
		Engine:   engine,
		Bookings: bookingRepo,
		Prefs:    prefsStore,
		Logger:   logger,
	})...)
	loop := &agent.Loop{
		Registry:      registry,
		Chain:         chain,
		MaxIterations: config.AppConfig.AgentMaxIterations,
		Logger:        logger,
	}

	orchestrator := bot.NewOrchestrator(
		time.Duration(config.AppConfig.CoalesceDelaySecs)*time.Second,
		&bot.Orchestrator{
			Transport:    transport,
			Replier:      loop,
			History:      conversationRepo,
			Settings:     settingsRepo,
			Prefs:        prefsStore,
			AdminNumber:  config.AppConfig.AdminNumber,
			HistoryLimit: config.AppConfig.HistoryFetchLimit,
			Logger:       logger,
		},
	)

	// Background reminder worker.
	cron.InitReminderWorker(transport)

	// Assemble the handler bundle and register routes.
	handlerBundle := &handlers.HandlerBundle{
		Orchestrator: orchestrator,
		BookingRepo:  bookingRepo,
		Engine:       engine,
		Catalog:      catalogService,
		SettingsRepo: settingsRepo,
		Logger:       logger,
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	// Drain buffered conversations before exiting so nothing typed during
	// the coalescing window is lost.
	orchestrator.Shutdown()

	logger.Sugar().Info("main: server stopped gracefully")
}
