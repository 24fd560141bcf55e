package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	ClientURL   string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`

	Log      Log
	HTTP     HTTPServer
	Database Database
	Redis    Redis
	JWT      JWT      `envPrefix:"JWT_"`
	Stripe   Stripe   `envPrefix:"STRIPE_"`
	Images   Images   `envPrefix:"IMAGES_"`
	Kafka    Kafka    `envPrefix:"KAFKA_"`
	Security Security
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host         string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port         string        `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

func (h HTTPServer) Addr() string {
	return h.Host + ":" + h.Port
}

type Database struct {
	URL string `env:"DATABASE_URL,notEmpty"`
}

type Redis struct {
	URL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

type JWT struct {
	AccessSecret  string        `env:"ACCESS_SECRET,notEmpty"`
	RefreshSecret string        `env:"REFRESH_SECRET,notEmpty"`
	AccessTTL     time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
}

type Stripe struct {
	SecretKey string `env:"SECRET_KEY,notEmpty"`
	Currency  string `env:"CURRENCY" envDefault:"brl"`
}

type Images struct {
	Bucket    string `env:"BUCKET"`
	Region    string `env:"REGION" envDefault:"us-east-1"`
	Folder    string `env:"FOLDER" envDefault:"products"`
	PublicURL string `env:"PUBLIC_URL"`
}

type Kafka struct {
	Brokers      []string `env:"BROKERS" envSeparator:","`
	ProductTopic string   `env:"PRODUCT_TOPIC" envDefault:"product_events"`
	OrderTopic   string   `env:"ORDER_TOPIC" envDefault:"order_events"`
}

type Security struct {
	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:","`
	CSRFEnabled   bool     `env:"CSRF_ENABLED" envDefault:"false"`
	SecureCookies bool     `env:"SECURE_COOKIES" envDefault:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")
	if len(cfg.Security.CORSOrigins) == 0 {
		cfg.Security.CORSOrigins = []string{cfg.ClientURL}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
