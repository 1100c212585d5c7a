package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DeploymentMode string

const (
	ModeLocal DeploymentMode = "local"
	ModeProd  DeploymentMode = "prod"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Billing    BillingConfig    `mapstructure:"billing"`
}

type DeploymentConfig struct {
	Mode DeploymentMode `mapstructure:"mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Type string `mapstructure:"type"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type StripeConfig struct {
	// Enabled selects the real Stripe provider; when false a no-op provider
	// is wired instead. Business logic never branches on this itself.
	Enabled   bool   `mapstructure:"enabled"`
	SecretKey string `mapstructure:"secret_key"`
	// PriceIDs maps catalog plan IDs to Stripe price IDs.
	PriceIDs map[string]string `mapstructure:"price_ids"`
}

type BillingConfig struct {
	// RunScheduler enables the in-process cron schedule. Deployments that
	// trigger reconciliation through the /cron endpoints leave it off.
	RunScheduler bool `mapstructure:"run_scheduler"`
}

// NewConfig loads configuration from config files and DIALHAVEN_* environment
// variables. A missing config file is not an error; env vars and defaults
// then carry the full configuration.
func NewConfig() (*Configuration, error) {
	// Best effort .env load for local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DIALHAVEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "dialhaven")
	v.SetDefault("postgres.dbname", "dialhaven")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("logging.level", "info")
	v.SetDefault("stripe.enabled", false)
	v.SetDefault("billing.run_scheduler", false)
}

// GetDefaultConfig returns a static configuration for tests and scripts.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "dialhaven",
			DBName:   "dialhaven",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		Redis:   RedisConfig{Address: "localhost:6379"},
		Cache:   CacheConfig{Type: "inmemory"},
		Logging: LoggingConfig{Level: "debug"},
	}
}
