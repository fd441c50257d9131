// internal/infra/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by PROFILE_BACKEND.
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Config holds every environment setting of the service.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	CatalogPath string

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	OrdersLimit          int
	AlertLimit           int
	OrderSubmitDelay     time.Duration

	CORSAllowedOrigins []string

	// memory | firestore | postgres
	ProfileBackend string

	GCPProjectID             string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// Web API key used for password sign-in. *Secret names a Secret Manager
	// version to read it from instead.
	FirebaseAPIKey       string
	FirebaseAPIKeySecret string

	GCSBucket string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Empty means the PC-builder selection is kept in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SendGridAPIKey       string
	SendGridAPIKeySecret string
	MailFrom             string
	MailFromName         string
}

// Load reads .env files (missing files are ignored) and then the process
// environment.
func Load(files ...string) *Config {
	_ = godotenv.Load(files...)

	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	return &Config{
		Env:      strings.ToLower(getenvDefault("APP_ENV", "development")),
		Port:     getenvDefault("PORT", "8080"),
		LogLevel: getenvDefault("LOG_LEVEL", "info"),

		CatalogPath: os.Getenv("CATALOG_PATH"),

		SessionTTL:           getenvDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getenvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		OrdersLimit:          getenvInt("ORDERS_LIMIT", 100),
		AlertLimit:           getenvInt("ALERT_LIMIT", 50),
		OrderSubmitDelay:     getenvDuration("ORDER_SUBMIT_DELAY", 0),

		CORSAllowedOrigins: splitList(getenvDefault("CORS_ALLOWED_ORIGINS", "*")),

		ProfileBackend: strings.ToLower(getenvDefault("PROFILE_BACKEND", BackendMemory)),

		GCPProjectID:             defaultProject,
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		FirebaseAPIKey:           os.Getenv("FIREBASE_API_KEY"),
		FirebaseAPIKeySecret:     os.Getenv("FIREBASE_API_KEY_SECRET"),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		DBHost:     getenvDefault("DB_HOST", "localhost"),
		DBPort:     getenvDefault("DB_PORT", "5432"),
		DBUser:     getenvDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenvDefault("DB_NAME", "storefront"),
		DBSSLMode:  getenvDefault("DB_SSLMODE", "disable"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		RedisPrefix:   getenvDefault("REDIS_PREFIX", "storefront"),

		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		SendGridAPIKeySecret: os.Getenv("SENDGRID_API_KEY_SECRET"),
		MailFrom:             os.Getenv("MAIL_FROM"),
		MailFromName:         getenvDefault("MAIL_FROM_NAME", "Storefront"),
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
