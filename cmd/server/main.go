package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/Johaan1835/TestMatrix/internal/config"
	"github.com/Johaan1835/TestMatrix/internal/database"
	"github.com/Johaan1835/TestMatrix/internal/embedding"
	"github.com/Johaan1835/TestMatrix/internal/handler"
	"github.com/Johaan1835/TestMatrix/internal/mailer"
	"github.com/Johaan1835/TestMatrix/internal/middleware"
	"github.com/Johaan1835/TestMatrix/internal/repository"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// main is the single entry‑point for the REST API.
func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded:")
	log.Printf("  - Database: %s", cfg.DBName)
	log.Printf("  - Embedding provider: %s", cfg.EmbeddingProvider)

	// Connect to MongoDB
	client, ctx, cancel, err := database.NewMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancel()
	defer client.Disconnect(ctx)
	log.Printf("Connected to MongoDB")

	db := client.Database(cfg.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	pendingRepo := repository.NewPendingRepository(db)
	planRepo := repository.NewPlanRepository(db)
	bugRepo := repository.NewBugRepository(db)

	// Seed the bootstrap admin on a fresh deployment
	if cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash bootstrap admin password: %v", err)
		}
		if err := userRepo.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, string(hash)); err != nil {
			log.Fatalf("Failed to seed bootstrap admin: %v", err)
		}
	}

	// The embedding client is built lazily: the server comes up even when
	// the model is unreachable, and bug search reports it per request.
	embedder := embedding.NewLazy(newProviderFunc(cfg), cfg.EmbedTimeout)
	defer embedder.Close()

	// Credential mails are optional; without an API key they are skipped.
	var mail service.Mailer
	if m := mailer.New(cfg.ResendAPIKey, cfg.MailFrom); m != nil {
		mail = m
	}

	// Initialize services
	secret := []byte(cfg.JWTSecret)
	authSvc := service.NewAuthService(userRepo, secret)
	userSvc := service.NewUserService(userRepo, mail)
	testCaseSvc := service.NewTestCaseService(catalogRepo, pendingRepo)
	planSvc := service.NewPlanService(planRepo, catalogRepo)
	bugSvc := service.NewBugService(bugRepo, embedder)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	app.Use(middleware.Logging())

	handler.RegisterRoutes(app, client, secret, authSvc, userSvc, testCaseSvc, planSvc, bugSvc)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// newProviderFunc selects the embedding backend from configuration.
func newProviderFunc(cfg config.Config) func(ctx context.Context) (embedding.Provider, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		return func(ctx context.Context) (embedding.Provider, error) {
			return embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		}
	case "vertex":
		return func(ctx context.Context) (embedding.Provider, error) {
			return embedding.NewVertexProvider(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.GCPCredentialsFile)
		}
	default:
		return func(ctx context.Context) (embedding.Provider, error) {
			return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
		}
	}
}
