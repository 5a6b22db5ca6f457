package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
}

type ServerConfig struct {
	Port                   string
	Env                    string
	LogLevel               string
	AllowedOrigins         []string
	ReadTimeout            time.Duration
	WriteTimeout           time.Duration
	IdleTimeout            time.Duration
	LoginRequestsPerMinute int
}

type AuthConfig struct {
	AdminUser       string
	AdminPassword   string // plain text or a bcrypt hash
	APIKey          string
	MaxAttempts     int
	LockoutDuration time.Duration
	SessionTTL      time.Duration
	CleanupInterval time.Duration // 0 disables the periodic sweep
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:                   getEnv("PORT", "8080"),
			Env:                    env,
			LogLevel:               getEnv("LOG_LEVEL", "info"),
			AllowedOrigins:         parseAllowedOrigins(env),
			ReadTimeout:            getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:           getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:            getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			LoginRequestsPerMinute: getEnvAsInt("LOGIN_REQUESTS_PER_MINUTE", 20),
		},
		Auth: AuthConfig{
			AdminUser:       getEnv("ADMIN_USER", ""),
			AdminPassword:   getEnv("ADMIN_PSWD", ""),
			APIKey:          getEnv("API_KEY", ""),
			MaxAttempts:     getEnvAsInt("MAX_LOGIN_ATTEMPTS", 3),
			LockoutDuration: getEnvAsDuration("LOCKOUT_DURATION", 24*time.Hour),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			CleanupInterval: getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
		},
	}

	if cfg.Auth.AdminUser == "" {
		return nil, fmt.Errorf("ADMIN_USER is required")
	}
	if cfg.Auth.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PSWD is required")
	}

	if err := validateAPIKey(cfg.Auth.APIKey, env); err != nil {
		return nil, err
	}

	if cfg.Auth.MaxAttempts <= 0 {
		return nil, fmt.Errorf("MAX_LOGIN_ATTEMPTS must be positive (got %d)", cfg.Auth.MaxAttempts)
	}
	if cfg.Auth.LockoutDuration <= 0 || cfg.Auth.SessionTTL <= 0 {
		return nil, fmt.Errorf("LOCKOUT_DURATION and SESSION_TTL must be positive")
	}
	if cfg.Server.LoginRequestsPerMinute <= 0 {
		return nil, fmt.Errorf("LOGIN_REQUESTS_PER_MINUTE must be positive (got %d)", cfg.Server.LoginRequestsPerMinute)
	}
	if cfg.Auth.CleanupInterval < 0 {
		return nil, fmt.Errorf("CLEANUP_INTERVAL cannot be negative")
	}

	return cfg, nil
}

// validateAPIKey enforces minimum standards for the static API key
func validateAPIKey(key, env string) error {
	if key == "" {
		return fmt.Errorf("API_KEY is required")
	}

	if env != "production" {
		return nil
	}

	if len(key) < 32 {
		return fmt.Errorf("API_KEY must be at least 32 characters in production (got %d)", len(key))
	}

	weakKeys := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	keyLower := strings.ToLower(key)
	for _, weak := range weakKeys {
		if strings.Contains(keyLower, weak) {
			return fmt.Errorf("API_KEY cannot contain a common weak value")
		}
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	originsStr := getEnv("ALLOWED_ORIGINS", "")
	if originsStr == "" {
		if env == "production" {
			return []string{} // Default to no origins in production
		}
		return []string{"*"}
	}

	var origins []string
	for _, origin := range strings.Split(originsStr, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
