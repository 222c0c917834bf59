package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// Room registry
	MaxRooms         int
	RoomCleanupDelay time.Duration

	// Connection handling
	DisconnectGrace time.Duration
}

// Load reads .env when present and falls back to process env vars.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config.Load] no .env file loaded: %v", err)
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		MaxRooms:         getEnvInt("MAX_ROOMS", 500),
		RoomCleanupDelay: getEnvMs("ROOM_CLEANUP_DELAY_MS", 30_000),
		// 0 preserves eager removal on transport disconnect; a positive value
		// parks the participant as disconnected for that long instead.
		DisconnectGrace: getEnvMs("DISCONNECT_GRACE_MS", 0),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config.getEnvInt] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvMs(key string, fallbackMs int64) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallbackMs) * time.Millisecond
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		log.Printf("[config.getEnvMs] invalid %s=%q, using %dms", key, v, fallbackMs)
		return time.Duration(fallbackMs) * time.Millisecond
	}
	return time.Duration(n) * time.Millisecond
}
