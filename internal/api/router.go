package api

import (
	"database/sql"
	"net/http"

	"parcel-delivery-service/internal/api/handlers"
	"parcel-delivery-service/internal/ports"
	"parcel-delivery-service/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RouterDeps carries everything the HTTP surface needs. DB and Redis are
// only used by the health check; handlers go through ports and services.
type RouterDeps struct {
	Packages   ports.PackageRepository
	Sessions   *services.SessionService
	Dispatcher ports.CostDispatcher
	Rates      *services.RateService
	Cookie     SessionCookieConfig
	DB         *sql.DB
	Redis      *redis.Client
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	pkgHandler := &handlers.PackageHandler{
		Repo:       deps.Packages,
		Sessions:   deps.Sessions,
		Dispatcher: deps.Dispatcher,
	}
	rateHandler := &handlers.RateHandler{Rates: deps.Rates}
	healthHandler := &handlers.HealthHandler{DB: deps.DB, Redis: deps.Redis}

	mux.HandleFunc("POST /packages/{$}", pkgHandler.Create)
	mux.HandleFunc("GET /packages/{$}", pkgHandler.List)
	mux.HandleFunc("GET /packages/types", pkgHandler.Types)
	mux.HandleFunc("GET /packages/{id}", pkgHandler.Get)

	mux.HandleFunc("GET /usd-rate", rateHandler.Current)
	mux.HandleFunc("DELETE /usd-rate/cache", rateHandler.InvalidateCache)

	mux.HandleFunc("GET /health", healthHandler.Check)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := sessionMiddleware(deps.Cookie)(mux)
	handler = metricsMiddleware(handler)
	return loggingMiddleware(handler)
}
