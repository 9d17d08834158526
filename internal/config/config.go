package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment with an
// optional .env file for local development.
type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	Port      string

	// BaseURL prefixes the links embedded in instructor notifications.
	BaseURL string

	// LockTimeout is how long a reviewer holds the artifact lock.
	LockTimeout time.Duration
}

// Load reads the configuration. Missing values fall back to development
// defaults, matching how the rest of the stack boots locally.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "peergrade"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		Port:        getEnv("PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		LockTimeout: getDuration("LOCK_TIMEOUT", 5*time.Minute),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("invalid %s %q, using %s", key, val, defaultVal)
		return defaultVal
	}
	return d
}
