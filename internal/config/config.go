package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup. Flags override the environment.
type Config struct {
	Addr            string
	AppMode         string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	AvatarSourceURL string
	AvatarTimeout   time.Duration
	BcryptCost      int
	LoginRateLimit  int
	LoginRateWindow time.Duration
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only set it behind a proxy that overwrites those headers.
	TrustProxy bool

	// DotEnvLoaded reports whether a .env file was found.
	DotEnvLoaded bool
}

func Load(args []string) (*Config, error) {
	// Load .env file if it exists
	loaded := godotenv.Load() == nil

	cfg := &Config{
		DotEnvLoaded:    loaded,
		Addr:            ":" + getEnv("PORT", "3000"),
		AppMode:         getEnv("APP_MODE", "development"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		AvatarSourceURL: getEnv("AVATAR_SOURCE_URL", "https://api.imgflip.com/get_memes"),
		AvatarTimeout:   getEnvAsDuration("AVATAR_TIMEOUT", 5*time.Second),
		BcryptCost:      getEnvAsInt("BCRYPT_COST", 10),
		LoginRateLimit:  getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvAsDuration("LOGIN_RATE_WINDOW", time.Minute),
		TrustProxy:      getEnvAsBool("TRUST_PROXY", false),
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "http service address")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
