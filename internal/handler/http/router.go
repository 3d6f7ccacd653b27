package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marianotorresleyva/storefront/internal/auth"
	"github.com/marianotorresleyva/storefront/internal/service"
	"github.com/marianotorresleyva/storefront/pkg/health"
	"github.com/marianotorresleyva/storefront/pkg/middleware"
)

// Services groups the application services exposed over HTTP.
type Services struct {
	Orders  *service.OrderService
	Catalog *service.CatalogService
	Clients *service.ClientService
	Roles   *service.RoleService
	Auth    *service.AuthService
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svcs Services,
	tokens *auth.JWTManager,
	healthHandler *health.Handler,
	corsConfig middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	orderHandler := NewOrderHandler(svcs.Orders, logger)
	productHandler := NewProductHandler(svcs.Catalog, logger)
	clientHandler := NewClientHandler(svcs.Clients, logger)
	roleHandler := NewRoleHandler(svcs.Roles, logger)
	authHandler := NewAuthHandler(svcs.Auth, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/password", authHandler.ChangePassword)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{code}", productHandler.GetProduct)

			// Catalog writes require an authenticated user.
			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(tokens))
				r.Post("/", productHandler.CreateProduct)
				r.Post("/batch", productHandler.CreateProductBatch)
				r.Patch("/{code}", productHandler.UpdateProduct)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.PlaceOrder)
			r.Get("/{orderId}", orderHandler.GetOrder)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", clientHandler.Register)
			r.Get("/{clientId}/orders", orderHandler.ListClientOrders)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(tokens))
				r.Get("/", clientHandler.ListClients)
				r.Get("/{clientId}", clientHandler.GetClient)
				r.Put("/{clientId}", clientHandler.UpdateClient)
				r.Delete("/{clientId}", clientHandler.DeleteClient)
			})
		})

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", roleHandler.ListRoles)
			r.Get("/{roleId}", roleHandler.GetRole)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(tokens))
				r.Post("/", roleHandler.CreateRole)
				r.Put("/{roleId}", roleHandler.UpdateRole)
				r.Delete("/{roleId}", roleHandler.DeleteRole)
			})
		})
	})

	return r
}
