package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"plafondhub/internal/adapters/events"
	"plafondhub/internal/adapters/http/middleware"
	"plafondhub/internal/adapters/http/routes"
	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/config"
	"plafondhub/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"

	_ "plafondhub/docs" // Swagger docs
)

// @title PlafondHub API
// @version 1.0
// @description Credit-line (plafond) origination and disbursement API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@plafondhub.id

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.plafondhub.id
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed roles, plafond tiers, tenor rates and the bootstrap admin
	if err := config.SeedMasterData(db); err != nil {
		log.Printf("⚠️ Warning: Failed to seed master data: %v", err)
	}

	// Optional infrastructure; the API degrades gracefully without either
	cache := config.ConnectRedis(cfg)
	publisher := events.NewPublisher(cfg.Broker.URL)

	collector := metrics.NewCollector()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PlafondHub API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	cronService := routes.Setup(app, cfg, &routes.Deps{
		DB:        db,
		Cache:     cache,
		Publisher: publisher,
		Metrics:   collector,
	})

	// Nightly maintenance (expired reset-token purge)
	cronService.Start()
	defer cronService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
