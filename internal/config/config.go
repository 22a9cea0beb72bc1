package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Image    ImageConfig    `mapstructure:"image"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`

	// Temperature controls response randomness; itinerary generation wants
	// some variety but stable JSON structure.
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	MaxOutputTokens int `mapstructure:"max_output_tokens" validate:"gte=0"`

	// DailyRequestLimit caps upstream API calls per calendar day.
	// Zero means the default limit applies.
	DailyRequestLimit int `mapstructure:"daily_request_limit" validate:"gte=0"`
}

// ImageConfig contains settings for the hero image provider.
// The image layer degrades to a stock fallback, so nothing here is required.
type ImageConfig struct {
	UnsplashAccessKey string `mapstructure:"unsplash_access_key"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"    validate:"gte=0"`
}

// TaskConfig contains background task processing settings.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`

	// MaxAttempts is the total number of generation attempts per plan,
	// counting the first try.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gt=0"`

	// RetryDelaySeconds is the fixed pause between generation attempts.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}
