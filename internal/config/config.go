package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env            string
	Port           string
	DatabaseURL    string
	RedisURL       string
	APIKey         string // optional static key; when set, /api routes require X-API-Key
	HealthAdminKey string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if dbURL == "" {
		dbURL = postgresURLFromParts()
	}

	return &Config{
		Env:            env,
		Port:           port,
		DatabaseURL:    dbURL,
		RedisURL:       viper.GetString("REDIS_URL"),
		APIKey:         viper.GetString("API_KEY"),
		HealthAdminKey: viper.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}

// postgresURLFromParts composes a DSN from POSTGRES_* variables when no
// DATABASE_URL is set (the original deployment env layout).
func postgresURLFromParts() string {
	host := viper.GetString("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	port := viper.GetString("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		viper.GetString("POSTGRES_USER"),
		viper.GetString("POSTGRES_PASSWORD"),
		host,
		port,
		viper.GetString("POSTGRES_DB"),
	)
}
