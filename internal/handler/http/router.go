package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okandemir/storefront/pkg/health"
	"github.com/okandemir/storefront/pkg/middleware"

	"github.com/okandemir/storefront/internal/auth"
	"github.com/okandemir/storefront/internal/domain"
	"github.com/okandemir/storefront/internal/service"
)

// popularCacheSeconds is the Cache-Control max-age for the popular listing.
const popularCacheSeconds = 60

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	userService *service.UserService,
	productService *service.ProductService,
	reviewService *service.ReviewService,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics())

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.Validate(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	authHandler := NewAuthHandler(userService)
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Get("/me", authHandler.Me)

			r.With(middleware.RequireRole(domain.RoleAdmin)).
				Get("/admin-only", authHandler.AdminOnly)
		})
	})

	productHandler := NewProductHandler(productService)
	reviewHandler := NewReviewHandler(reviewService)
	r.Route("/api/products", func(r chi.Router) {
		// Public catalog endpoints.
		r.Get("/", productHandler.List)
		r.With(middleware.CacheControl(popularCacheSeconds)).
			Get("/popular", productHandler.ListPopular)
		r.Get("/{id}", productHandler.Get)

		// Reviews: listing is public, submission accepts an optional token
		// so anonymous reviews can still be posted.
		r.Get("/{id}/reviews", reviewHandler.List)
		r.With(ContentTypeJSON, middleware.OptionalAuth(tokenValidator)).
			Post("/{id}/reviews", reviewHandler.Create)

		// Admin catalog management. Create and update are multipart, so no
		// ContentTypeJSON here.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Post("/", productHandler.Create)
			r.Patch("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
			r.Post("/{id}/sell", productHandler.Sell)
			r.Patch("/{id}/toggle-popular", productHandler.TogglePopular)
			r.Delete("/{id}/images/{imageIndex}", productHandler.RemoveImage)
			r.Patch("/{id}/images/{imageIndex}/set-primary", productHandler.SetPrimaryImage)
		})
	})

	return r
}
