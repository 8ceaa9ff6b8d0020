package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-library-backend/internal/config"
	"go-library-backend/internal/handler"
	"go-library-backend/internal/middleware"
	"go-library-backend/internal/model"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Handlers struct {
	Auth  *handler.AuthHandler
	Books *handler.BookHandler
	Audit *handler.AuditHandler
	Docs  *handler.DocsHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, health HealthChecker) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", healthHandler(health))
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.With(authMiddleware.RequireAuth).Post("/profile", h.Auth.Profile)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Profile)
		})

		api.Route("/books", func(books chi.Router) {
			books.Use(authMiddleware.RequireAuth)
			books.Get("/", h.Books.List)
			books.Post("/", h.Books.Create)
			books.Get("/{id}", h.Books.Get)
			books.Patch("/{id}", h.Books.Update)
			books.Delete("/{id}", h.Books.Delete)
		})

		api.With(authMiddleware.RequireAuth, authMiddleware.RequireUserType(model.UserTypeStaff)).Get("/audit", h.Audit.List)
	})

	return r
}

func healthHandler(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := health.Health(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
