// Command seedbugs loads a handful of sample bugs, with embeddings, into an
// empty registry so similarity search has something to rank during demos.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/Johaan1835/TestMatrix/internal/config"
	"github.com/Johaan1835/TestMatrix/internal/database"
	"github.com/Johaan1835/TestMatrix/internal/embedding"
	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/repository"
)

var sampleBugs = []models.Bug{
	{
		Title:       "Login button not working on mobile",
		Description: "When clicked on mobile devices, the login button does not trigger any action.",
		Severity:    models.SeverityHigh,
	},
	{
		Title:       "Dashboard layout breaks on small screens",
		Description: "The dashboard components overlap on smaller screen sizes.",
		Severity:    models.SeverityMedium,
	},
	{
		Title:       "Password reset email not sent",
		Description: "User does not receive a reset email after requesting it.",
		Severity:    models.SeverityHigh,
	},
}

func main() {
	cfg := config.Load()

	client, ctx, cancel, err := database.NewMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancel()
	defer client.Disconnect(ctx)

	repo := repository.NewBugRepository(client.Database(cfg.DBName))

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build embedding provider: %v", err)
	}
	defer provider.Close()

	for _, bug := range sampleBugs {
		vec, err := provider.Embed(ctx, bug.Title)
		if err != nil {
			log.Printf("Embedding %q failed, skipping: %v", bug.Title, err)
			continue
		}
		bug.Embedding = vec

		inserted, err := repo.Insert(ctx, bug)
		if err != nil {
			log.Printf("Inserting %q failed: %v", bug.Title, err)
			continue
		}
		log.Printf("Inserted bug %d: %q", inserted.ID, inserted.Title)
	}
	log.Printf("Seeding complete")
}

func newProvider(ctx context.Context, cfg config.Config) (embedding.Provider, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		return embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	case "vertex":
		return embedding.NewVertexProvider(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.GCPCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}
