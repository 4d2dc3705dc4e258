package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CatalogConfig holds settings of the client that talks to the breed catalog API
type CatalogConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"`
	FetchTimeout         int    `mapstructure:"fetch_timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	CircuitBreakerDelay  int    `mapstructure:"circuit_breaker_delay"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN builds the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
	)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Addr returns host:port of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig holds TTLs of the breed list cache tiers, in seconds
type CacheConfig struct {
	RedisTTL        int `mapstructure:"redis_ttl"`
	LocalTTL        int `mapstructure:"local_ttl"`
	CleanupInterval int `mapstructure:"cleanup_interval"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load loads configuration from YAML file with environment variable overrides.
// An empty path means config.yaml in the current directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// defaults and environment are enough to run
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("catalog.base_url", "http://localhost:8080")
	v.SetDefault("catalog.timeout", 5)
	v.SetDefault("catalog.fetch_timeout", 10)
	v.SetDefault("catalog.max_retries", 2)
	v.SetDefault("catalog.max_requests_per_second", 10)
	v.SetDefault("catalog.circuit_breaker_delay", 30)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "petmarket")
	v.SetDefault("database.user", "petmarket_user")
	v.SetDefault("database.password", "petmarket_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "petmarket:breeds:")

	v.SetDefault("cache.redis_ttl", 3600)
	v.SetDefault("cache.local_ttl", 60)
	v.SetDefault("cache.cleanup_interval", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}
