package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is populated from environment variables. Defaults suit the
// docker-compose development setup; deployments override everything
// through the pod environment.
type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	ServerPort string `mapstructure:"SERVER_PORT"`
	IsLocalDev bool   `mapstructure:"IS_LOCAL_DEV"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes int    `mapstructure:"TOKEN_TTL_MINUTES"`

	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`

	IngestionEnabled         bool   `mapstructure:"INGESTION_ENABLED"`
	IngestionPollSeconds     int    `mapstructure:"INGESTION_POLL_INTERVAL_SECONDS"`
	IngestionConnTimeoutSecs int    `mapstructure:"INGESTION_CONNECTION_TIMEOUT_SECONDS"`
	DeviceClientMode         string `mapstructure:"DEVICE_CLIENT_MODE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "truetime_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("IS_LOCAL_DEV", false)
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("TOKEN_TTL_MINUTES", 480)
	viper.SetDefault("OTLP_ENDPOINT", "jaeger:4317")
	viper.SetDefault("INGESTION_ENABLED", true)
	viper.SetDefault("INGESTION_POLL_INTERVAL_SECONDS", 60)
	viper.SetDefault("INGESTION_CONNECTION_TIMEOUT_SECONDS", 10)
	viper.SetDefault("DEVICE_CLIENT_MODE", "http") // "http" or "mock"

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}

// TokenTTL returns the configured token lifetime as a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// PollInterval returns the configured device poll interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.IngestionPollSeconds) * time.Second
}

// ConnTimeout returns the per-request device connection timeout.
func (c Config) ConnTimeout() time.Duration {
	return time.Duration(c.IngestionConnTimeoutSecs) * time.Second
}
