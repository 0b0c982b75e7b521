package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Supabase SupabaseConfig
	OpenAI   OpenAIConfig
	Assembly AssemblyAIConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Push     PushConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// SupabaseConfig holds record-store and object-storage access configuration.
// RequestTimeout bounds metadata calls; AudioTimeout bounds audio downloads
// and must stay minutes-scale to tolerate large recordings.
type SupabaseConfig struct {
	URL            string
	AnonKey        string
	RequestTimeout time.Duration
	AudioTimeout   time.Duration
}

// OpenAIConfig holds transcription and summarization configuration.
// BaseURL may point at any OpenAI-compatible server. RequestTimeout bounds
// each chat completion; pipeline jobs carry no context deadline, so a stage
// without its own timeout would hold a worker slot indefinitely.
type OpenAIConfig struct {
	APIKey           string
	BaseURL          string
	ChatModel        string
	WhisperModel     string
	RequestTimeout   time.Duration
	SummaryMaxTokens int
	ShortMaxTokens   int
}

// AssemblyAIConfig holds AssemblyAI configuration. JobTimeout bounds one
// whole upload-and-poll transcription cycle.
type AssemblyAIConfig struct {
	APIKey     string
	JobTimeout time.Duration
}

// RedisConfig holds Redis configuration. An empty Host disables Redis and
// falls back to the in-process meeting guard.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig holds bucket storage configuration for s3:// audio
// references. An empty Endpoint disables the bucket fetcher.
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// PushConfig holds push notification configuration
type PushConfig struct {
	ExpoURL string
	Timeout time.Duration
}

// PipelineConfig holds processing pipeline configuration
type PipelineConfig struct {
	Provider  string // "openai" or "assemblyai"
	Workers   int
	QueueSize int
	GuardTTL  time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "*")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			AnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
			RequestTimeout: getEnvAsDuration("SUPABASE_REQUEST_TIMEOUT", "30s"),
			AudioTimeout:   getEnvAsDuration("SUPABASE_AUDIO_TIMEOUT", "5m"),
		},
		OpenAI: OpenAIConfig{
			APIKey:           getEnv("OPENAI_API_KEY", ""),
			BaseURL:          getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			ChatModel:        getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			WhisperModel:     getEnv("OPENAI_WHISPER_MODEL", "whisper-1"),
			RequestTimeout:   getEnvAsDuration("OPENAI_REQUEST_TIMEOUT", "2m"),
			SummaryMaxTokens: getEnvAsInt("SUMMARY_MAX_TOKENS", 500),
			ShortMaxTokens:   getEnvAsInt("SHORT_SUMMARY_MAX_TOKENS", 100),
		},
		Assembly: AssemblyAIConfig{
			APIKey:     getEnv("ASSEMBLYAI_API_KEY", ""),
			JobTimeout: getEnvAsDuration("ASSEMBLYAI_JOB_TIMEOUT", "10m"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", ""),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", true),
		},
		Push: PushConfig{
			ExpoURL: getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
			Timeout: getEnvAsDuration("EXPO_PUSH_TIMEOUT", "10s"),
		},
		Pipeline: PipelineConfig{
			Provider:  getEnv("TRANSCRIBER_PROVIDER", "openai"),
			Workers:   getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize: getEnvAsInt("PIPELINE_QUEUE_SIZE", 64),
			GuardTTL:  getEnvAsDuration("PIPELINE_GUARD_TTL", "30m"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.AnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	switch c.Pipeline.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case "assemblyai":
		if c.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required")
		}
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required (summaries are always generated via the chat model)")
		}
	default:
		return fmt.Errorf("TRANSCRIBER_PROVIDER must be \"openai\" or \"assemblyai\", got %q", c.Pipeline.Provider)
	}
	return nil
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
