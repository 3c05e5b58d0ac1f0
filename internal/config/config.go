package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN,required"`
	BaseURL       string `env:"MARKETPLACE_BASE_URL" envDefault:"https://krobmokkalip.com"`
	MetricsAddr   string `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	OrderPollInterval   time.Duration `env:"ORDER_POLL_INTERVAL" envDefault:"3s"`
	VoucherPollInterval time.Duration `env:"VOUCHER_POLL_INTERVAL" envDefault:"6s"`
	ProductPollInterval time.Duration `env:"PRODUCT_POLL_INTERVAL" envDefault:"6s"`
	APIRequestsPerSec   int           `env:"API_REQUESTS_PER_SEC" envDefault:"10"`

	AdminAddr     string `env:"ADMIN_ADDR" envDefault:":8080"`
	AdminUser     string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPass     string `env:"ADMIN_PASS,required"`
	SessionSecret string `env:"SESSION_SECRET,required"`
	ConfigPath    string `env:"CONFIG_PATH" envDefault:"config.json"`

	EnableTelemetry bool `env:"ENABLE_TELEMETRY" envDefault:"false"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Printf("Config loaded. BaseURL: %s, LogLevel: %s", cfg.BaseURL, cfg.LogLevel)
	return cfg, nil
}
