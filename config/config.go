package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr string

	// Music library
	LibraryPath      string // Root directory of the local music collection
	MediaRoutePrefix string // URL prefix under which library files are served
	WatchLibrary     bool   // Re-index files as they appear under LibraryPath

	// Indexing
	IndexDelay     time.Duration // Pause between files during a bulk index run
	AIDJThreshold  int           // Searches required before AI DJ mode is offered
	FuzzyThreshold int           // Minimum fuzzy score (0-100) for fallback matches

	// Ollama
	OllamaHost  string
	OllamaModel string

	// YouTube search sidecar API
	YouTubeAPIURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	SearchCacheTTL time.Duration
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable holding milliseconds as a duration.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		LibraryPath:      getEnv("MUSIC_LIBRARY_PATH", "/mnt/media/MUSIC"),
		MediaRoutePrefix: getEnv("MEDIA_ROUTE_PREFIX", "/media/music"),
		WatchLibrary:     getEnvBool("WATCH_LIBRARY", false),

		IndexDelay:     getEnvDuration("INDEX_DELAY_MS", 100*time.Millisecond),
		AIDJThreshold:  getEnvInt("AI_DJ_THRESHOLD", 25),
		FuzzyThreshold: getEnvInt("FUZZY_THRESHOLD", 60),

		OllamaHost:  getEnv("OLLAMA_HOST", "http://127.0.0.1:11434"),
		OllamaModel: getEnv("OLLAMA_MODEL", "llama3.1:8b"),

		YouTubeAPIURL: getEnv("YOUTUBE_API_URL", "http://localhost:3000"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:     getEnv("DB_NAME", "partyfm"),

		RedisHost:      getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		SearchCacheTTL: getEnvDuration("SEARCH_CACHE_TTL_MS", 30*time.Second),
	}
}
