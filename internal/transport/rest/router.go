package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/auth"
	"github.com/hrmspro/hrms/internal/dashboard"
	"github.com/hrmspro/hrms/internal/openapi"
	"github.com/hrmspro/hrms/internal/resource"
	"github.com/hrmspro/hrms/internal/transport/middleware"
	"github.com/hrmspro/hrms/internal/transport/swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Auth      *auth.Handler
	Resources *resource.Handler
	Dashboard *dashboard.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, security internal.SecurityConfig, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS(splitOrigins(allowedOrigins)...))

	router.Get("/openapi.json", openapi.Handler())
	router.Handle("/swagger/*", swagger.Handler("/openapi.json"))

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)
		r.Get("/version", healthHandler.Version)

		var authn func(http.Handler) http.Handler
		if handlers.Auth != nil {
			limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
				IPPerMinute: security.AuthRatePerMinute,
				IPBurst:     security.AuthRateBurst,
			})
			r.Route("/auth", func(ar chi.Router) {
				ar.With(limiter.Middleware).Post("/login", handlers.Auth.Login)
				ar.With(limiter.Middleware).Post("/signup", handlers.Auth.Signup)
				ar.Post("/refresh", handlers.Auth.RefreshToken)
			})
			authn = handlers.Auth.AuthMiddleware
		}

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireAuth(security.RequireAuth && authn != nil, authn))

			if handlers.Dashboard != nil {
				pr.Get("/dashboard/stats", handlers.Dashboard.GetStats)
			}
			if handlers.Resources != nil {
				handlers.Resources.Routes(pr)
			}
		})
	})
}

// Instrument wraps the router so every request gets a server span.
func Instrument(h http.Handler) http.Handler {
	return otelhttp.NewHandler(h, "hrms",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
