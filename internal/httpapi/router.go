package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joao-fontenele/backoffice-api/internal/auth"
	"github.com/joao-fontenele/backoffice-api/internal/cupons"
	"github.com/joao-fontenele/backoffice-api/internal/orders"
	"github.com/joao-fontenele/backoffice-api/internal/products"
	"github.com/joao-fontenele/backoffice-api/internal/telemetry"
)

type Handlers struct {
	Orders   *orders.Handler
	Cupons   *cupons.Handler
	Products *products.Handler
}

type RouterConfig struct {
	Auth        *auth.Middleware
	RateLimiter *RateLimiter
	Metrics     http.Handler
	// TrustProxy makes X-Forwarded-For / X-Real-IP decide the client address.
	// Only enable it when the API sits behind a proxy that sets those headers.
	TrustProxy bool
}

// NewRouter mounts the back-office API under /api/v1. Reads of orders and
// products are public; every write and most cupon reads require an admin token.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(telemetry.WithHTTPRoute)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	admin := func(r chi.Router) chi.Router {
		return r.With(cfg.Auth.Authenticate, cfg.Auth.RequireAdmin)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", handleHealthcheck)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.HandleList)
			r.Get("/estado/{estado}", h.Orders.HandleListByEstado)
			r.Get("/{id}", h.Orders.HandleGet)

			admin(r).Post("/", h.Orders.HandleCreate)
			admin(r).Put("/{id}", h.Orders.HandleUpdate)
			admin(r).Delete("/{id}", h.Orders.HandleDelete)
			admin(r).Patch("/{id}/cancel", h.Orders.HandleCancel)
		})

		r.Route("/cupons", func(r chi.Router) {
			r.Get("/activos", h.Cupons.HandleListActive)
			r.Get("/codigo/{codigo}", h.Cupons.HandleGetByCodigo)

			use := http.Handler(http.HandlerFunc(h.Cupons.HandleUse))
			if cfg.RateLimiter != nil {
				use = cfg.RateLimiter.Handler(use)
			}
			r.Method(http.MethodPost, "/{codigo}/usar", use)

			admin(r).Get("/", h.Cupons.HandleList)
			admin(r).Post("/", h.Cupons.HandleCreate)
			admin(r).Get("/{id}", h.Cupons.HandleGet)
			admin(r).Put("/{id}", h.Cupons.HandleUpdate)
			admin(r).Delete("/{id}", h.Cupons.HandleDelete)
			admin(r).Patch("/{id}/deshabilitar", h.Cupons.HandleDisable)
			admin(r).Patch("/{id}/habilitar", h.Cupons.HandleEnable)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.HandleList)
			r.Get("/{id}", h.Products.HandleGet)

			admin(r).Post("/", h.Products.HandleCreate)
			admin(r).Put("/{id}", h.Products.HandleUpdate)
			admin(r).Delete("/{id}", h.Products.HandleDelete)
			admin(r).Patch("/{id}/stock", h.Products.HandleAdjustStock)
		})
	})

	return r
}

func handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
