package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config.yaml in the working directory. Absence is fine;
	// environment variables can carry the whole configuration.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables use the WAYFARER_ prefix with underscores for
	// nesting, e.g. WAYFARER_DATABASE_URL, WAYFARER_LLM_GEMINI_API_KEY.
	v.SetEnvPrefix("WAYFARER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for settings that have a sensible
// out-of-the-box behavior. Required settings get no default so validation
// catches a missing configuration instead of silently running misconfigured.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_output_tokens", 2048)
	v.SetDefault("llm.daily_request_limit", 20)

	v.SetDefault("image.timeout_seconds", 30)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 50)
	v.SetDefault("task.max_attempts", 3)
	v.SetDefault("task.retry_delay_seconds", 1)
}

// bindEnvKeys makes AutomaticEnv see nested keys that have no default and
// may not appear in a config file. Without an explicit binding viper only
// resolves keys it already knows about.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"database.url",
		"llm.gemini_api_key",
		"image.unsplash_access_key",
	}
	for _, key := range keys {
		// BindEnv only errors on empty input, which cannot happen here.
		_ = v.BindEnv(key)
	}
}
