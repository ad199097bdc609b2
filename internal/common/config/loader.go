// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like INFOBIP_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from multiple locations so the binary and the tests,
// which run from different directories, both pick it up.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars substitutes ${VAR}-style placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets from the environment when the YAML left
// them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Gateway.Infobip.APIKey == "" {
		if val := os.Getenv("INFOBIP_API_KEY"); val != "" {
			cfg.Gateway.Infobip.APIKey = val
		}
	}
	if cfg.Gateway.Infobip.BaseURL == "" {
		if val := os.Getenv("INFOBIP_BASE_URL"); val != "" {
			cfg.Gateway.Infobip.BaseURL = val
		}
	}
	if cfg.Gateway.AWS.Region == "" {
		if val := os.Getenv("AWS_REGION"); val != "" {
			cfg.Gateway.AWS.Region = val
		}
	}
	if cfg.Dedupe.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Dedupe.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sms-notifier"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Gateway.Provider == "" {
		cfg.Gateway.Provider = "infobip"
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = 10000
	}

	if cfg.Brands.DefaultCode == "" {
		cfg.Brands.DefaultCode = "BQUK"
	}

	// Dispatch defaults mirror the resilience package defaults.
	if cfg.Dispatch.MaxAttempts == 0 {
		cfg.Dispatch.MaxAttempts = 3
	}
	if cfg.Dispatch.InitialDelay == 0 {
		cfg.Dispatch.InitialDelay = 1000
	}
	if cfg.Dispatch.BackoffFactor == 0 {
		cfg.Dispatch.BackoffFactor = 2
	}
	if cfg.Dispatch.AttemptTimeout == 0 {
		cfg.Dispatch.AttemptTimeout = 5000
	}
	if cfg.Dispatch.FailureRatio == 0 {
		cfg.Dispatch.FailureRatio = 0.5
	}
	if cfg.Dispatch.MinRequests == 0 {
		cfg.Dispatch.MinRequests = 3
	}
	if cfg.Dispatch.WindowSeconds == 0 {
		cfg.Dispatch.WindowSeconds = 10
	}
	if cfg.Dispatch.OpenTimeoutSecs == 0 {
		cfg.Dispatch.OpenTimeoutSecs = 30
	}

	if cfg.Dedupe.TTLHours == 0 {
		cfg.Dedupe.TTLHours = 24
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	if cfg.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required")
	}
	if cfg.Kafka.GroupID == "" {
		return fmt.Errorf("kafka.group_id is required")
	}

	switch cfg.Gateway.Provider {
	case "infobip":
		if cfg.Gateway.Infobip.BaseURL == "" {
			return fmt.Errorf("gateway.infobip.base_url is required")
		}
		if cfg.Gateway.Infobip.APIKey == "" {
			return fmt.Errorf("gateway.infobip.api_key is required")
		}
	case "sns":
		if cfg.Gateway.AWS.Region == "" {
			return fmt.Errorf("gateway.aws.region is required")
		}
	default:
		return fmt.Errorf("gateway.provider must be \"infobip\" or \"sns\", got %q", cfg.Gateway.Provider)
	}

	if cfg.Dedupe.Enabled && cfg.Dedupe.Redis.Address == "" {
		return fmt.Errorf("dedupe.redis.address is required when dedupe is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
