// Package billing assembles the shared-session billing engine: cart ledger,
// split agreement manager, order lifecycle and bill aggregator behind one
// HTTP API.
package billing

import (
	"context"
	"strconv"

	"dinesplit/internal/billing/handlers"
	"dinesplit/internal/billing/repository"
	"dinesplit/internal/billing/service"
	"dinesplit/internal/common/httpx"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/config"
	"dinesplit/internal/connections/redis"
)

// Run serves the billing API until ctx is canceled.
func Run(ctx context.Context, cfg *config.Config, store repository.Store, pub service.EventPublisher, cache *redis.Cache) error {
	lg := logger.New("billing-service")
	svc := service.New(store, pub, cache, lg, cfg.Billing.VATRate)
	h := handlers.New(svc, lg)

	mux := handlers.Router(h)
	limited := handlers.RateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)(mux)

	addr := ":" + strconv.Itoa(cfg.HTTP.Port)
	lg.Info("listening", map[string]any{"addr": addr, "storage": cfg.Storage.Driver})
	return httpx.New(addr, limited).Run(ctx)
}
