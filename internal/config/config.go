package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Security SecurityConfig
	Budget   BudgetConfig
	Sentry   SentryConfig
}

// BudgetConfig holds the knobs of the budgeting features.
type BudgetConfig struct {
	DefaultCurrency string
	ImportMaxBytes  int64
	DemoSeedCount   int
}

// SentryConfig enables error reporting when DSN is non-empty.
type SentryConfig struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	PrivateKey           *rsa.PrivateKey
	PublicKey            *rsa.PublicKey
	Issuer               string
}

type SecurityConfig struct {
	BCryptCost         int
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Load reads configuration from the environment. Call godotenv first if a
// .env file should be honoured.
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "budget_user"),
			Password:        getEnv("DB_PASSWORD", "budget_password"),
			Name:            getEnv("DB_NAME", "budget_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Security: SecurityConfig{
			BCryptCost:         getIntEnv("BCRYPT_COST", 12),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 20),
		},
		Budget: BudgetConfig{
			DefaultCurrency: strings.ToUpper(getEnv("BUDGET_CURRENCY", "INR")),
			ImportMaxBytes:  int64(getIntEnv("IMPORT_MAX_BYTES", 5<<20)),
			DemoSeedCount:   getIntEnv("DEMO_SEED_COUNT", 45),
		},
		Sentry: SentryConfig{
			DSN:              os.Getenv("SENTRY_DSN"),
			Environment:      getEnv("SENTRY_ENVIRONMENT", getEnv("APP_ENV", "development")),
			TracesSampleRate: getFloatEnv("SENTRY_TRACES_SAMPLE_RATE", 0),
		},
		JWT: JWTConfig{
			AccessTokenDuration:  getDurationEnv("JWT_ACCESS_TOKEN_DURATION", 24*time.Hour),
			RefreshTokenDuration: getDurationEnv("JWT_REFRESH_TOKEN_DURATION", 7*24*time.Hour),
			Issuer:               getEnv("JWT_ISSUER", "pocket-budget"),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	var loadJWTKeysErr error
	config.JWT.PrivateKey, config.JWT.PublicKey, loadJWTKeysErr = config.loadJWTKeys()
	if loadJWTKeysErr != nil {
		return nil, fmt.Errorf("failed to load RSA keys: %w", loadJWTKeysErr)
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// loadJWTKeys loads RSA keys for JWT signing and verification
// Priority order:
// 1. If JWT_PRIVATE_KEY and JWT_PUBLIC_KEY env vars are set, use them (works in all environments)
// 2. If production and env vars missing, fail with error (production requires explicit keys)
// 3. If development/testing and env vars missing, generate new keypair (dev convenience)
func (c *Config) loadJWTKeys() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKeyB64 := os.Getenv("JWT_PRIVATE_KEY")
	publicKeyB64 := os.Getenv("JWT_PUBLIC_KEY")

	if privateKeyB64 != "" && publicKeyB64 != "" {
		slog.Info("Loading RSA keypair from environment variables")
		return c.loadKeysFromEnvVars(privateKeyB64, publicKeyB64)
	}

	if c.IsProduction() {
		return nil, nil, fmt.Errorf("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY environment variables must be set in production environments")
	}

	slog.Warn("Generating ephemeral RSA keypair for JWT; tokens will not survive a restart", "environment", c.Server.Environment)
	return GenerateRSAKeyPair()
}

// loadKeysFromEnvVars loads RSA keys from base64-encoded environment variables
func (c *Config) loadKeysFromEnvVars(privateKeyB64, publicKeyB64 string) (*rsa.PrivateKey, *rsa.PublicKey, error) {

	privateKeyBytes, err := base64.StdEncoding.DecodeString(privateKeyB64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode JWT_PRIVATE_KEY: %w", err)
	}

	publicKeyBytes, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode JWT_PUBLIC_KEY: %w", err)
	}

	privateKey, err := loadRSAPrivateKey(privateKeyBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, err := loadRSAPublicKey(publicKeyBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return privateKey, publicKey, nil
}

// loadCORSAllowOrigins retrieves CORS allowed origins from environment or returns default
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")

	if corsOrigins == "" {
		if c.IsProduction() {
			slog.Warn("CORS_ALLOW_ORIGINS not set in production, allowing all origins")
		}
		return []string{"*"}
	}

	// Split by comma and trim whitespace
	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	slog.Debug("CORS allowed origins configured", "origins", origins)
	return origins
}

// GenerateRSAKeyPair generates a new RSA key pair
func GenerateRSAKeyPair() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}

	return privateKey, &privateKey.PublicKey, nil
}

// loadRSAPrivateKey loads an RSA private key from PEM format
func loadRSAPrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the key")
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		// Fallback: PKCS8 format support for compatibility with various key generation tools
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}

		privateKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("not an RSA private key")
		}

		return privateKey, nil
	}

	return privateKey, nil
}

// loadRSAPublicKey loads an RSA public key from PEM format
func loadRSAPublicKey(pemData []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}

	return rsaPublicKey, nil
}
