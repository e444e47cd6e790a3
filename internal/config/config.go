package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host string
	Port string

	// StorageBackend selects the persistence engine: "postgres", "badger"
	// or "memory".
	StorageBackend string
	DatabaseURL    string
	BadgerPath     string

	// SessionBackend is "memory" (process-scoped) or "store" (persisted
	// through the storage engine).
	SessionBackend string
	SessionTTL     time.Duration

	StorageTimeout time.Duration
	MaxUploadBytes int64
	CORSOrigin     string
	PublicDir      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		StorageBackend: getEnv("STORAGE_BACKEND", "postgres"),
		DatabaseURL:    getDatabaseURL(),
		BadgerPath:     getEnv("BADGER_PATH", "./data/vault"),
		SessionBackend: getEnv("SESSION_BACKEND", "memory"),
		SessionTTL:     getDuration("SESSION_TTL", 0),
		StorageTimeout: getDuration("STORAGE_TIMEOUT", 10*time.Second),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 100*1024*1024),
		CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:5173"),
		PublicDir:      getEnv("PUBLIC_DIR", "./public"),
	}
}

func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "postgres")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)
}

func getEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid duration for %s: %v", key, err)
	}
	return d
}

func getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Fatalf("invalid number for %s: %v", key, err)
	}
	return n
}
