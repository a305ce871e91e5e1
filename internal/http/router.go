package http

import (
	"net/http"

	"marketlens/backend-go/internal/config"
	"marketlens/backend-go/internal/handlers"
	"marketlens/backend-go/internal/services"
)

func NewRouter(cfg config.Config, store services.Store, provider *services.ProviderClient) http.Handler {
	api := handlers.New(cfg, store, provider)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/", api.Root)
	mux.HandleFunc("/api/v1/health", api.Health)
	mux.HandleFunc("/api/v1/momentum", api.Momentum)
	mux.HandleFunc("/api/v1/channel", api.Channel)
	mux.HandleFunc("/api/v1/compass", api.Compass)
	mux.HandleFunc("/api/v1/user-table", api.UserTable)
	mux.HandleFunc("/api/v1/latest-price", api.LatestPrice)
	mux.HandleFunc("/api/v1/last-close", api.LastClose)
	mux.HandleFunc("/api/v1/cache/health", api.CacheHealth)
	mux.HandleFunc("/api/v1/cache/keys", api.CacheKeys)
	mux.HandleFunc("/api/v1/cache/flush", api.CacheFlush)

	h := http.Handler(mux)
	h = withRecovery(h)
	h = withLogging(h)
	h = withRateLimit(cfg.RateLimitPerMin)(h)
	h = withCORS(h)
	return h
}
