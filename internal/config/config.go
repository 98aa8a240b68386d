package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig is the main application configuration, loaded from environment
// variables via github.com/caarlos0/env. A .env file is honoured in
// development; missing files are ignored.
type AppConfig struct {
	AppName string `env:"APP_NAME" envDefault:"Session Auth"`
	Env     string `env:"ENV"      envDefault:"DEV"`

	Auth     AuthConfig
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	HTTP     HTTPConfig  `envPrefix:"HTTP_"`
}

// Load reads configuration from the environment and validates it.
// Malformed configuration is fatal at startup, never per-request.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *AppConfig) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// IsDev reports whether the process runs in development mode.
func (c *AppConfig) IsDev() bool {
	return c.Env == "DEV"
}

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	Port            int           `env:"PORT"             envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Validate checks the HTTP configuration.
func (c HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.Port)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// DBConfig contains PostgreSQL configuration for the user store.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"sessionauth"`
	Password string `env:"PASSWORD" envDefault:""`
	Name     string `env:"NAME"     envDefault:"sessionauth"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
}

// DSN returns a connection string suitable for pgxpool.New.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// RedisConfig contains Redis configuration for the session cache.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
