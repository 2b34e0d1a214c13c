// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabasePath string
	Environment  string

	// Completion engine
	AIAPIKey    string
	AIBaseURL   string
	ChatModel   string
	ReportModel string

	// Blob storage for raw uploads
	BlobContainerURL string
	BlobSASToken     string

	// Full-text retrieval index
	SearchEndpoint  string
	SearchAPIKey    string
	SearchIndexName string
	RetrievalTopK   int
	ChunkSize       int

	// Document analysis backends
	AnalyzerEndpoint string
	AnalyzerAPIKey   string
	VisionEndpoint   string
	VisionAPIKey     string

	// Contact-form mail
	EmailAPIKey      string
	ContactFromEmail string
	ContactToEmail   string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "gymengine.db"),
		Environment:  env,

		AIAPIKey:    getEnv("AI_API_KEY", ""),
		AIBaseURL:   getEnv("AI_BASE_URL", ""),
		ChatModel:   getEnv("CHAT_MODEL", "gpt-4o"),
		ReportModel: getEnv("REPORT_MODEL", "gpt-4o"),

		BlobContainerURL: getEnv("BLOB_CONTAINER_URL", ""),
		BlobSASToken:     getEnv("BLOB_SAS_TOKEN", ""),

		SearchEndpoint:  getEnv("SEARCH_ENDPOINT", ""),
		SearchAPIKey:    getEnv("SEARCH_API_KEY", ""),
		SearchIndexName: getEnv("SEARCH_INDEX_NAME", "documents"),
		RetrievalTopK:   getEnvAsInt("RAG_TOPK", 3),
		ChunkSize:       getEnvAsInt("CHUNK_SIZE", 500),

		AnalyzerEndpoint: getEnv("ANALYZER_ENDPOINT", ""),
		AnalyzerAPIKey:   getEnv("ANALYZER_API_KEY", ""),
		VisionEndpoint:   getEnv("VISION_ENDPOINT", ""),
		VisionAPIKey:     getEnv("VISION_API_KEY", ""),

		EmailAPIKey:      getEnv("EMAIL_API_KEY", ""),
		ContactFromEmail: getEnv("CONTACT_FROM_EMAIL", ""),
		ContactToEmail:   getEnv("CONTACT_TO_EMAIL", ""),
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.AIAPIKey == "" {
			missing = append(missing, "AI_API_KEY")
		}
		if cfg.BlobContainerURL == "" {
			missing = append(missing, "BLOB_CONTAINER_URL")
		}
		if cfg.SearchEndpoint == "" {
			missing = append(missing, "SEARCH_ENDPOINT")
		}
		if cfg.SearchAPIKey == "" {
			missing = append(missing, "SEARCH_API_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
