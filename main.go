package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"reading-progress-service/config"
	"reading-progress-service/handlers"
	"reading-progress-service/middleware"
	"reading-progress-service/services"
	"reading-progress-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	if cfg.ServiceToken == "" {
		log.Fatal("SERVICE_TOKEN environment variable not set")
	}

	db, err := services.OpenDatabase(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := services.NewAchievementRegistry(db, cfg.RegistryCacheSize)
	if err != nil {
		log.Fatal("failed to create achievement registry:", err)
	}
	if cfg.SeedDefinitions {
		if err := registry.Seed(ctx); err != nil {
			log.Fatal("failed to seed achievement definitions:", err)
		}
	}

	progression := services.NewProgressionService(db, registry, services.ProgressionOptions{
		Location:         cfg.Location(),
		MaxPagesPerEvent: cfg.MaxPagesPerEvent,
	})

	app := fiber.New()

	// 🔐 GLOBAL: only Gateway requests allowed
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupRoutes(app, progression, cfg.StreamInterval)

	jobs := []services.ScheduledJob{services.RegistryRefreshJob(registry, cfg.RegistryRefreshInterval)}
	if cfg.NotifyURL != "" {
		notifier := workers.NewAchievementNotifier(progression.Ledger, cfg.NotifyURL, cfg.ServiceToken,
			cfg.NotifyBatchSize, cfg.NotifyConcurrency, cfg.NotifyLanguage)
		jobs = append(jobs, notifier.Job(cfg.NotifyInterval))
	} else {
		log.Println("⚠️  NOTIFY_URL not set, achievement notifications disabled")
	}
	if _, err := services.StartScheduler(ctx, jobs...); err != nil {
		log.Fatal("failed to start scheduler:", err)
	}

	if cfg.ProfileSyncURL != "" {
		workers.NewReaderSyncWorker(db, cfg.ProfileSyncURL, cfg.ProfileSyncPath, cfg.ServiceToken, cfg.ProfileSyncInterval).Start(ctx)
	} else {
		log.Println("⚠️  PROFILE_SYNC_URL not set, reader sync disabled")
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Reading day timezone: %s", progression.Location())
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
