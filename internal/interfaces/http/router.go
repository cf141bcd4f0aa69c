package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ipede/album-catalog/internal/domain"
	"github.com/ipede/album-catalog/internal/infrastructure/ratelimit"
	"github.com/ipede/album-catalog/internal/interfaces/http/handlers"
	"github.com/ipede/album-catalog/internal/interfaces/http/middleware/auth"
	mwratelimit "github.com/ipede/album-catalog/internal/interfaces/http/middleware/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the router wires into its routes
type Dependencies struct {
	APIBase string

	// DB backs /health/ready; nil reports not ready
	DB handlers.Pinger

	Tokens       domain.TokenService
	Principals   domain.PrincipalLoader
	AuthService  domain.AuthService
	UserService  domain.UserService
	Limiter      *ratelimit.Limiter
	Recorder     domain.AdmissionRecorder
	LoginLimiter *mwratelimit.IPRateLimiter

	// Gatherer backs /metrics; the route is omitted when nil
	Gatherer prometheus.Gatherer

	// SwaggerPath is the generated OpenAPI document served at /swagger/doc.json
	SwaggerPath string

	Logger *zap.Logger
}

type Router struct {
	router *chi.Mux
}

func NewRouter(deps Dependencies) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	authMiddleware := auth.NewAuthMiddleware(deps.Tokens, deps.Principals, logger)
	admission := mwratelimit.NewAdmissionMiddleware(deps.Limiter, deps.Recorder, logger)

	healthHandler := handlers.NewHealthHandler(deps.DB, logger)
	authHandler := handlers.NewAuthHandler(deps.AuthService, logger)
	userHandler := handlers.NewUserHandler(deps.UserService, logger)

	router := createRouter()

	// Health check endpoints
	router.Group(func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/health/ready", healthHandler.Ready)
		r.Get("/health/live", healthHandler.Live)
	})

	if deps.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger UI configuration
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
		httpSwagger.DeepLinking(true),
		httpSwagger.PersistAuthorization(true),
	))

	// Serve Swagger JSON with CORS headers
	swaggerPath := deps.SwaggerPath
	if swaggerPath == "" {
		swaggerPath = "docs/swagger.json"
	}
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, swaggerPath)
	})

	apiBase := deps.APIBase
	if apiBase == "" {
		apiBase = "/api/v1"
	}

	router.Route(apiBase, func(r chi.Router) {
		// Public routes, throttled per client address instead of per principal
		r.Group(func(r chi.Router) {
			if deps.LoginLimiter != nil {
				r.Use(deps.LoginLimiter.Middleware)
			}
			r.Post("/auth/login", authHandler.LoginHandler)
			r.Post("/auth/refresh", authHandler.RefreshHandler)
		})

		// Everything else passes the gate and then the admission check
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticator, admission.Handler)

			r.With(authMiddleware.RequireAuthenticated).Get("/usuarios/me", userHandler.MeHandler)
			r.With(authMiddleware.RequireRole(domain.RoleAdmin)).Get("/usuarios", userHandler.ListUsersHandler)
		})
	})

	return &Router{router: router}
}

func createRouter() *chi.Mux {
	router := chi.NewRouter()

	// Add middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Timeout(60 * time.Second))

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
