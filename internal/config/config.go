// Package config centralises all environment / flag configuration for the API.
// It should be imported only by the cmd binaries (and test code). Business‑logic
// layers receive an already‑built Config instance via dependency‑injection.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime option the server needs.
// Keep it flat and simple—prefer primitive types over embedding structs.
type Config struct {
	// Network
	Port string

	// Data store
	MongoURI string
	DBName   string

	// Auth
	JWTSecret string

	// Embeddings
	EmbeddingProvider  string // "openai" or "vertex"
	EmbeddingModel     string
	OpenAIAPIKey       string
	GCPProjectID       string
	GCPLocation        string
	GCPCredentialsFile string
	EmbedTimeout       time.Duration

	// Email
	ResendAPIKey string
	MailFrom     string

	// Bootstrap admin, seeded only on an empty deployment.
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	// Server tuning
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load parses the environment (and an optional .env file) into Config.
// It terminates the process on missing critical variables so
// mis-configurations fail fast.
func Load() Config {
	// godotenv.Load() is a no‑op if .env doesn't exist—safe in production.
	_ = godotenv.Load()

	return Config{
		Port:               getEnv("PORT", "5000"),
		MongoURI:           must("MONGODB_URI"),
		DBName:             getEnv("MONGODB_DB", "testmatrix"),
		JWTSecret:          must("JWT_SECRET"),
		EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "openai"),
		EmbeddingModel:     os.Getenv("EMBEDDING_MODEL"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		GCPProjectID:       os.Getenv("GCP_PROJECT_ID"),
		GCPLocation:        os.Getenv("GCP_LOCATION"),
		GCPCredentialsFile: os.Getenv("GCP_CREDENTIALS_FILE"),
		EmbedTimeout:       getDuration("EMBED_TIMEOUT_SEC", 30),
		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),
		MailFrom:           getEnv("MAIL_FROM", "onboarding@resend.dev"),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@localhost"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		ReadTimeout:        getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout:       getDuration("WRITE_TIMEOUT_SEC", 10),
	}
}

// must fetches a required env var or terminates the program.
func must(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("env var %s is required", key)
	}
	return val
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			return time.Duration(sec) * time.Second
		}
		log.Printf("invalid %s=%q; using default %ds", key, v, defaultSec)
	}
	return time.Duration(defaultSec) * time.Second
}
