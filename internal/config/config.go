package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	MongoURI string `mapstructure:"mongouri"`
	MongoDB  string `mapstructure:"mongo_db"`
	Port     string `mapstructure:"port"`

	ClientURL  string        `mapstructure:"client_url"`
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`
	PaymentCurrency     string `mapstructure:"payment_currency"`

	// Read by the page controllers and the CLI client commands.
	APIBaseURL           string `mapstructure:"react_app_api_base_url"`
	StripePublishableKey string `mapstructure:"react_app_stripe_publishable_key"`
}

var (
	ErrMissingMongoURI  = errors.New("MONGOURI environment variable not set")
	ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable not set")
	ErrInvalidTTL       = errors.New("SESSION_TTL must be positive")
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"mongouri":                         "",
		"mongo_db":                         "rentcaredb",
		"port":                             "5001",
		"client_url":                       "http://localhost:3000",
		"jwt_secret":                       "",
		"session_ttl":                      "24h",
		"redis_addr":                       "",
		"redis_password":                   "",
		"redis_db":                         0,
		"stripe_secret_key":                "",
		"stripe_webhook_secret":            "",
		"payment_currency":                 "inr",
		"react_app_api_base_url":           "",
		"react_app_stripe_publishable_key": "",
	}
}

// Load reads envFile into the process environment when it exists and binds
// every setting to its upper-case environment variable.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: Error loading %s: %s", envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.PaymentCurrency = strings.ToLower(cfg.PaymentCurrency)
	return cfg, nil
}

// ValidateServer checks the settings serve cannot start without.
func (c *Config) ValidateServer(needMongo bool) error {
	if needMongo && c.MongoURI == "" {
		return ErrMissingMongoURI
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.SessionTTL <= 0 {
		return ErrInvalidTTL
	}
	return nil
}

func (c *Config) PaymentsEnabled() bool {
	return c.StripeSecretKey != ""
}

func (c *Config) SessionsInRedis() bool {
	return c.RedisAddr != ""
}
