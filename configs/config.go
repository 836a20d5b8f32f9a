package configs

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI        string
	DBName          string
	JWTSecret       string
	Port            string
	SessionCacheDir string
}

// Load reads .env when present and falls back to process environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		MongoURI:        os.Getenv("MONGO_URI"),
		DBName:          os.Getenv("DB_NAME"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		Port:            os.Getenv("PORT"),
		SessionCacheDir: os.Getenv("SESSION_CACHE_DIR"),
	}
	if cfg.DBName == "" {
		cfg.DBName = "linkup"
	}
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.SessionCacheDir == "" {
		cfg.SessionCacheDir = os.TempDir()
	}
	return cfg
}
