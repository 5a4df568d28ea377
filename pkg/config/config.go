package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsStaging    bool
	IsProduction bool

	JWTSecret     string
	Port          string
	TokenTTLHours int

	// database
	DBDriver string
	DBDSN    string

	LogLevel string
	LogJSON  bool

	CORSOrigins []string

	GeminiAPIKey string
	GeminiModel  string

	// runtime tunables
	RateLimitWindowSeconds int
	RateLimitCapacity      int
	ChatCacheTTLSeconds    int
	ChatCacheMaxItems      int
	AllowSelfMessages      bool
)

// loadDotEnv loads .env outside production. A missing file is not an error;
// the process environment is used as-is.
func loadDotEnv() error {
	if os.Getenv("APP_ENV") == "production" {
		return nil
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads the environment (and .env when not in production) into the
// package variables. It must be called once at startup before any other
// package reads config.
func Load() error {
	if err := loadDotEnv(); err != nil {
		return err
	}

	AppEnv = envOr("APP_ENV", "staging")
	if !slices.Contains([]string{"staging", "production"}, AppEnv) {
		return fmt.Errorf("APP_ENV must be 'staging' or 'production', got %q", AppEnv)
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	if JWTSecret == "" {
		if IsProduction {
			return fmt.Errorf("JWT_SECRET_KEY must be set in production")
		}
		JWTSecret = "homemade-dev-secret"
	}
	Port = envOr("PORT", "3000")
	TokenTTLHours = atoiOr(os.Getenv("TOKEN_TTL_HOURS"), 24)

	DBDriver = strings.ToLower(envOr("DB_DRIVER", "sqlite"))
	if !slices.Contains([]string{"sqlite", "mysql"}, DBDriver) {
		return fmt.Errorf("DB_DRIVER must be 'sqlite' or 'mysql', got %q", DBDriver)
	}
	DBDSN = envOr("DB_DSN", "homemade.db")

	LogLevel = envOr("LOG_LEVEL", "info")
	LogJSON = os.Getenv("LOG_JSON") == "1" || IsProduction

	CORSOrigins = splitList(envOr("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000"))

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	GeminiModel = envOr("GEMINI_MODEL", "gemini-2.0-flash")

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 20)
	ChatCacheTTLSeconds = atoiOr(os.Getenv("CHAT_CACHE_TTL_SECONDS"), 2)
	ChatCacheMaxItems = atoiOr(os.Getenv("CHAT_CACHE_MAX_ITEMS"), 1000)
	AllowSelfMessages = os.Getenv("ALLOW_SELF_MESSAGES") == "1"

	return nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
