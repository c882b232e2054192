package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dinesplit/internal/billing"
	"dinesplit/internal/billing/repository"
	"dinesplit/internal/billing/service"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/config"
	"dinesplit/internal/connections/database"
	"dinesplit/internal/connections/rabbitmq"
	"dinesplit/internal/connections/redis"
	"dinesplit/internal/notifier"
)

func main() {
	mode := flag.String("mode", "", "billing-service | notification-subscriber")
	cfgPath := flag.String("config", "config.yaml", "path to YAML config")
	port := flag.Int("port", 0, "billing-service: HTTP port override")
	rateLimit := flag.Float64("rate-limit", 0, "billing-service: requests per second override")
	flag.Parse()

	// .env holds local secrets; absence is fine in deployed environments.
	_ = godotenv.Load()

	lg := logger.New("bootstrap")
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": *cfgPath})
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}
	if *rateLimit > 0 {
		cfg.HTTP.RateLimitRPS = *rateLimit
		cfg.HTTP.RateLimitBurst = int(*rateLimit * 2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "billing-service":
		if err := runBilling(ctx, cfg, lg); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	case "notification-subscriber":
		rmq, err := dialBroker(cfg.RabbitMQ)
		if err != nil {
			lg.Error("rabbitmq_connect_failed", err, nil)
			os.Exit(1)
		}
		defer rmq.Close()
		if err := notifier.Run(ctx, rmq); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: billing-service | notification-subscriber")
		os.Exit(2)
	}
}

func dialBroker(cfg config.RabbitMQ) (*rabbitmq.Client, error) {
	if cfg.TLS {
		return rabbitmq.DialTLS(cfg)
	}
	return rabbitmq.Dial(cfg)
}

func runBilling(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	var store repository.Store
	switch cfg.Storage.Driver {
	case "memory":
		store = repository.NewInMemory()
		lg.Info("storage_ready", map[string]any{"driver": "memory"})
	default:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		pg := repository.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
		lg.Info("storage_ready", map[string]any{
			"driver": "postgres", "host": cfg.Database.Host, "database": cfg.Database.Database,
		})
	}

	var pub service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitMQ.Host != "" {
		rmq, err := dialBroker(cfg.RabbitMQ)
		if err != nil {
			return err
		}
		defer rmq.Close()
		if err := rmq.DeclareTopology(); err != nil {
			return err
		}
		pub = service.NewRabbitPublisher(rmq)
		lg.Info("rabbitmq_ready", map[string]any{"host": cfg.RabbitMQ.Host, "tls": cfg.RabbitMQ.TLS})
	}

	var cache *redis.Cache
	if cfg.Redis.Addr != "" {
		c, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			// the cache is an optimization, not a dependency
			lg.Error("redis_connect_failed", err, map[string]any{"addr": cfg.Redis.Addr})
		} else {
			cache = c
			defer cache.Close()
			lg.Info("redis_ready", map[string]any{"addr": cfg.Redis.Addr})
		}
	}

	return billing.Run(ctx, cfg, store, pub, cache)
}
