// Package config loads service configuration from config.yaml and the
// environment, with environment values taking precedence.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	MongoURI  string `mapstructure:"MONGO_URI"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	JWTSecret    string `mapstructure:"JWT_SECRET"`
	HostUsername string `mapstructure:"HOST_USERNAME"`
	HostPassword string `mapstructure:"HOST_PASSWORD"`

	Verify VerifyConfig `mapstructure:"VERIFY"`
}

// VerifyConfig tunes the verification engine
type VerifyConfig struct {
	// BreakerMaxFailures is the consecutive AI failures that open the circuit
	BreakerMaxFailures int `mapstructure:"BREAKER_MAX_FAILURES"`
	// BreakerResetTimeout is how long the circuit stays open
	BreakerResetTimeout time.Duration `mapstructure:"BREAKER_RESET_TIMEOUT"`
	// DedupeTimeout is the hard deadline for the duplicate-removal pipeline
	DedupeTimeout time.Duration `mapstructure:"DEDUPE_TIMEOUT"`
	// UnboundedUnknownGrades lifts the number ceiling for grades outside 1-6
	// instead of applying the grade-2 ceiling
	UnboundedUnknownGrades bool `mapstructure:"UNBOUNDED_UNKNOWN_GRADES"`
	// SimilarityThreshold is the default duplicate-detection threshold
	SimilarityThreshold float64 `mapstructure:"SIMILARITY_THRESHOLD"`
	// CacheTTL is how long verification results stay cached
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`
}

// Load reads config.yaml if present, then applies MATHQC_-prefixed
// environment overrides and defaults.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("HOST_USERNAME", "admin")
	viper.SetDefault("HOST_PASSWORD", "password123")
	viper.SetDefault("VERIFY.BREAKER_MAX_FAILURES", 3)
	viper.SetDefault("VERIFY.BREAKER_RESET_TIMEOUT", "30s")
	viper.SetDefault("VERIFY.DEDUPE_TIMEOUT", "120s")
	viper.SetDefault("VERIFY.UNBOUNDED_UNKNOWN_GRADES", false)
	viper.SetDefault("VERIFY.SIMILARITY_THRESHOLD", 0.85)
	viper.SetDefault("VERIFY.CACHE_TTL", "10m")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("config.yaml not found, using environment variables and defaults")
		} else {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	viper.SetEnvPrefix("MATHQC")
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
