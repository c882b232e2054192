package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

type RabbitMQ struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	// TLS switches the connection to amqps, for managed brokers.
	TLS bool `yaml:"tls"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type HTTP struct {
	Port           int     `yaml:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type Billing struct {
	VATRate float64 `yaml:"vat_rate"`
}

type Storage struct {
	// Driver selects the order store: "postgres" (default) or "memory".
	Driver string `yaml:"driver"`
}

type Config struct {
	Database Database `yaml:"database"`
	RabbitMQ RabbitMQ `yaml:"rabbitmq"`
	Redis    Redis    `yaml:"redis"`
	HTTP     HTTP     `yaml:"http"`
	Billing  Billing  `yaml:"billing"`
	Storage  Storage  `yaml:"storage"`
}

// Load reads the YAML config, applies defaults and the small set of
// environment overrides used for secrets in deployment.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Database: Database{Port: 5432, SSLMode: "disable", MaxConns: 10},
		RabbitMQ: RabbitMQ{Port: 5672, VHost: "/"},
		HTTP:     HTTP{Port: 3000, RateLimitRPS: 100, RateLimitBurst: 200},
		Billing:  Billing{VATRate: 0.14},
		Storage:  Storage{Driver: "postgres"},
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("RABBITMQ_PASSWORD"); v != "" {
		cfg.RabbitMQ.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Storage.Driver != "postgres" && c.Storage.Driver != "memory" {
		return fmt.Errorf("invalid storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" {
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
			return fmt.Errorf("database config incomplete")
		}
	}
	if c.Billing.VATRate < 0 || c.Billing.VATRate >= 1 {
		return fmt.Errorf("invalid vat_rate %v", c.Billing.VATRate)
	}
	return nil
}
