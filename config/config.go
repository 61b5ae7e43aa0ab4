package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the application needs at startup. It is loaded once
// in main and handed to constructors; nothing reads the environment after that.
type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"server"`

	Shortener struct {
		CodeLength  int `mapstructure:"code_length"`
		MaxAttempts int `mapstructure:"max_attempts"`
	} `mapstructure:"shortener"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	Auth struct {
		Secret   string `mapstructure:"secret"`
		AdminKey string `mapstructure:"admin_key"`
	} `mapstructure:"auth"`
}

// Load reads config.yaml (from ./configs or the working directory) merged with
// environment variables, e.g. DATABASE_PASSWORD overrides database.password.
func Load() (*Config, error) {
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("shortener.code_length", 6)
	viper.SetDefault("shortener.max_attempts", 10)
	viper.SetDefault("database.host", "127.0.0.1")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "shortlink")
	viper.SetDefault("auth.secret", "dev-only-signing-key")
	viper.SetDefault("auth.admin_key", "")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Missing file is fine, the defaults plus env cover everything.
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
