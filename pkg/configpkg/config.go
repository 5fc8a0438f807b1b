// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver              string        `mapstructure:"DB_DRIVER"`
	DBSource              string        `mapstructure:"DB_SOURCE"`
	ServerAddress         string        `mapstructure:"SERVER_ADDRESS"`
	Environment           string        `mapstructure:"GO_ENV"`
	MigrationURL          string        `mapstructure:"MIGRATION_URL"`
	AccountNumberAttempts int           `mapstructure:"ACCOUNT_NUMBER_ATTEMPTS"`
	RequestTimeout        time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RateLimit             string        `mapstructure:"RATE_LIMIT"`
}

// Load reads configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("MIGRATION_URL", "file://db/migration")
	v.SetDefault("ACCOUNT_NUMBER_ATTEMPTS", 16)
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("RATE_LIMIT", "300-M")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}
