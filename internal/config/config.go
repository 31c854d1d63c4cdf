package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	RedisURL  string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASS" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	BotToken  string `env:"BOT_TOKEN"`
	JWTSecret string `env:"JWT_SECRET"`

	// ServerSeed is the committed fairness secret. The service refuses to
	// start without it; a bet must never fall back to an ad hoc secret.
	ServerSeed string `env:"SERVER_SEED"`

	AdminSecret string `env:"ADMIN_SECRET"`

	GatewayMerchantID  string `env:"GATEWAY_MERCHANT_ID"`
	GatewaySecret      string `env:"GATEWAY_SECRET"`
	GatewayCheckoutURL string `env:"GATEWAY_CHECKOUT_URL" envDefault:"https://pay.example.com/checkout"`

	HouseEdgeBasisPoints int64         `env:"HOUSE_EDGE_BP" envDefault:"150"`
	ProcessedOrderTTL    time.Duration `env:"PROCESSED_ORDER_TTL" envDefault:"48h"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.ServerSeed == "" {
		return nil, fmt.Errorf("SERVER_SEED is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AdminSecret == "" {
		return nil, fmt.Errorf("ADMIN_SECRET is required")
	}
	if cfg.GatewaySecret == "" {
		return nil, fmt.Errorf("GATEWAY_SECRET is required")
	}
	if cfg.HouseEdgeBasisPoints < 0 || cfg.HouseEdgeBasisPoints >= 10000 {
		return nil, fmt.Errorf("HOUSE_EDGE_BP must be in [0, 10000)")
	}

	return cfg, nil
}
