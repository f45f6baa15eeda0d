package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port      string
	DBDSN     string
	LogFile   string
	RedisAddr string

	CacheTTL time.Duration

	// Remote commerce platform (Square-compatible REST API)
	SquareBaseURL     string
	SquareToken       string
	SquareLocationID  string
	SquareWebhookKey  string
	MaxCatalogObjects int

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	SyncSecret string
	MinAge     int
}

func Load() Config {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		DBDSN:             getenv("DB_DSN", "vapordepot.db"), // sqlite file in project root
		LogFile:           getenv("LOG_FILE", "./vapordepot.log"),
		RedisAddr:         os.Getenv("REDIS_ADDR"), // empty disables the durable cache tier
		CacheTTL:          getdur("CACHE_TTL", 30*time.Minute),
		SquareBaseURL:     getenv("SQUARE_BASE_URL", "https://connect.squareup.com"),
		SquareToken:       os.Getenv("SQUARE_ACCESS_TOKEN"),
		SquareLocationID:  os.Getenv("SQUARE_LOCATION_ID"),
		SquareWebhookKey:  os.Getenv("SQUARE_WEBHOOK_SIGNATURE_KEY"),
		MaxCatalogObjects: getint("MAX_CATALOG_OBJECTS", 0),
		JWTAccessSecret:   os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:  os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:         getdur("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshTTL:        getdur("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
		SyncSecret:        os.Getenv("SYNC_SECRET"),
		MinAge:            getint("AGE_MIN", 21),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s REDIS_ADDR=%s CACHE_TTL=%s LOG_FILE=%s",
		cfg.Port, cfg.DBDSN, cfg.RedisAddr, cfg.CacheTTL, cfg.LogFile)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[config] invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[config] invalid %s=%q, using %s", key, v, def)
	}
	return def
}
