// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Env holds the configuration values for the application.
type Env struct {
	Port          string
	DatabaseURL   string // postgres DSN; empty means local sqlite
	SQLitePath    string
	CloudinaryURL string
	AssetFolder   string
	SessionSecret string // empty means a per-process secret is generated
	SessionMaxAge time.Duration
	RedisAddr     string // optional listing cache
	RedisPassword string
	RedisDB       int
	ArchiveBucket string // optional raw-image archive
	Region        string
	OCRProvider   string // "vision" or empty (disabled)
	OCRCredsJSON  string
	MaxUploadSize int64
}

// MustLoad reads the environment variables and returns an Env struct.
func MustLoad() Env {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	maxAgeSec, _ := strconv.Atoi(get("SESSION_MAX_AGE_SECONDS", "86400"))
	redisDB, _ := strconv.Atoi(get("REDIS_DB", "0"))
	maxUpload, _ := strconv.ParseInt(get("MAX_UPLOAD_BYTES", "10485760"), 10, 64)

	e := Env{
		Port:          get("PORT", "8080"),
		DatabaseURL:   get("DATABASE_URL", ""),
		SQLitePath:    get("SQLITE_PATH", "app.db"),
		CloudinaryURL: must("CLOUDINARY_URL"),
		AssetFolder:   get("ASSET_FOLDER", "receipts"),
		SessionSecret: get("SESSION_SECRET", ""),
		SessionMaxAge: time.Duration(maxAgeSec) * time.Second,
		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		ArchiveBucket: get("ARCHIVE_BUCKET", ""),
		Region:        get("AWS_REGION", "us-east-1"),
		OCRProvider:   get("OCR_PROVIDER", ""),
		OCRCredsJSON:  get("OCR_CREDENTIALS_JSON", ""),
		MaxUploadSize: maxUpload,
	}
	return e
}

// get returns the value of the environment variable k or def if not set.
func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// must returns the value of the environment variable k or panics if not set.
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic(fmt.Errorf("missing env %s", k))
	}
	return v
}
