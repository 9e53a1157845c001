package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/healthbuddy/backend/pkg/secrets"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Gemini GeminiConfig
	Places PlacesConfig
	Gradio GradioConfig
	Lookup LookupConfig
	OTEL   OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	AllowedOrigins string
}

// GeminiConfig holds the language model configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// PlacesConfig holds Google Places configuration
type PlacesConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// GradioConfig holds the hosted disease prediction interface configuration
type GradioConfig struct {
	BaseURL  string
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// LookupConfig bounds a single doctor lookup end to end
type LookupConfig struct {
	Timeout time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
	// MetricsEnabled exposes GET /metrics for Prometheus scraping
	MetricsEnabled bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables win.
// API keys are then pulled from Vault when VAULT_ENABLED is set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	if _, err := secrets.Apply(context.Background(), secrets.LoadVaultConfigFromEnv()); err != nil {
		return nil, fmt.Errorf("failed to load secrets from vault: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Env:            getEnv("APP_ENV", "development"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 20*time.Second),
		},
		Places: PlacesConfig{
			APIKey:  getEnv("GOOGLE_MAPS_KEY", ""),
			BaseURL: getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
			Timeout: getEnvAsDuration("PLACES_TIMEOUT", 8*time.Second),
		},
		Gradio: GradioConfig{
			BaseURL:  getEnv("GRADIO_BASE_URL", "https://gauravbhatt9854-healthbuddy.hf.space"),
			Endpoint: getEnv("GRADIO_ENDPOINT", "predict_disease_interface"),
			Token:    getEnv("HF_TOKEN", ""),
			Timeout:  getEnvAsDuration("GRADIO_TIMEOUT", 60*time.Second),
		},
		Lookup: LookupConfig{
			Timeout: getEnvAsDuration("LOOKUP_TIMEOUT", 30*time.Second),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "healthbuddy"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}, nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
