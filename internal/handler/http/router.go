package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/healclinics/shop-api/internal/auth"
)

type RouterDeps struct {
	Tokens  *auth.TokenManager
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Cart    *CartHandler
	Address *AddressHandler
	Order   *OrderHandler
	Post    *PostHandler
	Webhook *WebhookHandler
}

// NewRouter assembles the API. Anonymous endpoints sit behind a stricter
// per-IP rate limit than authenticated traffic.
func NewRouter(deps RouterDeps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// Anonymous surface: auth entry points, read-only catalog, posts and
		// the address directory proxy.
		api.Group(func(anon chi.Router) {
			anon.Use(httprate.LimitByIP(60, time.Minute))

			deps.Auth.RegisterRoutes(anon)
			deps.Catalog.RegisterRoutes(anon)
			deps.Post.RegisterPublicRoutes(anon)
			deps.Address.RegisterLookupRoutes(anon)
		})

		// Webhooks are provider-to-server; no bearer token, looser limit.
		api.Group(func(hooks chi.Router) {
			hooks.Use(httprate.LimitByIP(120, time.Minute))
			deps.Webhook.RegisterRoutes(hooks)
		})

		api.Group(func(authed chi.Router) {
			authed.Use(httprate.LimitByIP(300, time.Minute))
			authed.Use(AuthMiddleware(deps.Tokens))

			deps.Cart.RegisterRoutes(authed)
			deps.Address.RegisterRoutes(authed)
			deps.Order.RegisterRoutes(authed)
			deps.Post.RegisterRoutes(authed)
		})
	})

	return router
}
