// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Brands   BrandsConfig   `mapstructure:"brands"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Dedupe   DedupeConfig   `mapstructure:"dedupe"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig covers the health and metrics HTTP endpoint.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
	// MinBytes/MaxBytes tune reader fetch sizes; zero keeps library defaults.
	MinBytes int `mapstructure:"min_bytes"`
	MaxBytes int `mapstructure:"max_bytes"`
}

// GatewayConfig selects and configures the outbound SMS provider.
type GatewayConfig struct {
	Provider string        `mapstructure:"provider"` // "infobip" or "sns"
	Infobip  InfobipConfig `mapstructure:"infobip"`
	AWS      AWSConfig     `mapstructure:"aws"`
	Timeout  int           `mapstructure:"timeout"` // milliseconds
}

type InfobipConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
}

// BrandsConfig holds per-banner overrides and the fallback banner used for
// unrecognized codes. An empty default_code disables the fallback.
type BrandsConfig struct {
	DefaultCode string        `mapstructure:"default_code"`
	Overrides   []BrandConfig `mapstructure:"overrides"`
}

type BrandConfig struct {
	Code     string `mapstructure:"code"`
	Name     string `mapstructure:"name"`
	SenderID string `mapstructure:"sender_id"`
}

// DispatchConfig controls delivery retries and the circuit breaker.
type DispatchConfig struct {
	MaxAttempts     int     `mapstructure:"max_attempts"`
	InitialDelay    int     `mapstructure:"initial_delay"` // milliseconds
	BackoffFactor   float64 `mapstructure:"backoff_factor"`
	AttemptTimeout  int     `mapstructure:"attempt_timeout"` // milliseconds
	FailureRatio    float64 `mapstructure:"failure_ratio"`
	MinRequests     int     `mapstructure:"min_requests"`
	WindowSeconds   int     `mapstructure:"window_seconds"`
	OpenTimeoutSecs int     `mapstructure:"open_timeout_seconds"`
}

type DedupeConfig struct {
	Enabled  bool        `mapstructure:"enabled"`
	TTLHours int         `mapstructure:"ttl_hours"`
	Redis    RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
